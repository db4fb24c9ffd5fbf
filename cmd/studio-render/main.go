// Command studio-render imports an image, applies adjustments and writes
// the flattened result as PNG.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"image-studio/internal/adjust"
	"image-studio/internal/config"
	"image-studio/internal/importer"
	"image-studio/internal/store"
	"image-studio/internal/studio"
)

func main() {
	imagePath := flag.String("image", "", "Path to input image (PNG, JPEG, GIF, TIFF, BMP or WebP)")
	outPath := flag.String("out", "out.png", "Output PNG path")
	preset := flag.String("preset", "", "Preset name to apply")
	adjustments := flag.String("adjust", "", `Adjustments as JSON, e.g. '{"brightness":20,"sepia":40}'`)
	listPresets := flag.Bool("presets", false, "List presets and exit")
	flag.Parse()

	if *listPresets {
		for _, p := range adjust.Presets() {
			fmt.Printf("%-10s %s\n", p.Name, p.Label)
		}
		return
	}
	if *imagePath == "" {
		fmt.Println("Usage: studio-render -image <path> [-out out.png] [-preset name] [-adjust json]")
		os.Exit(1)
	}

	data, err := os.ReadFile(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read image: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Default()
	cfg.Log.Level = "warn"
	sess, err := studio.New(studio.Options{
		Config: cfg,
		Store:  store.NewMemory(),
		Logger: config.NewLogger(cfg.Log, os.Stderr),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create session: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	defer sess.Close(ctx)

	res, err := sess.ImportImage(ctx, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to import image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %s image: %dx%d pixels\n", res.Decoded.Format, res.Decoded.Width(), res.Decoded.Height())
	fmt.Printf("Canvas: %dx%d (scale %.3f)\n", res.Document.Width, res.Document.Height, res.Placement.Scale)
	printPlacement(res.Placement)

	set := adjust.Defaults()
	if *preset != "" {
		p, err := sess.ApplyPreset(*preset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		set = p.Set
	}
	if *adjustments != "" {
		// Explicit values override the preset's.
		if set, err = overrides(set, *adjustments); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -adjust: %v\n", err)
			os.Exit(1)
		}
	}
	if err := sess.Adjust(set, true); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to apply adjustments: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Effects: %s\n", adjust.Compile(set))
	for _, name := range set.Changed() {
		v, _ := set.Get(name)
		fmt.Printf("  %-12s %g\n", name, v)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := sess.ExportPNG(f); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write PNG: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nWrote %s\n", *outPath)
}

func overrides(set adjust.Set, raw string) (adjust.Set, error) {
	var values map[string]any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return set, err
	}
	for name, v := range values {
		var f float64
		switch v := v.(type) {
		case float64:
			f = v
		case bool:
			if v {
				f = 1
			}
		default:
			return set, fmt.Errorf("%s: expected a number or boolean", name)
		}
		next, err := set.With(name, f)
		if err != nil {
			return set, err
		}
		set = next
	}
	return set, nil
}

func printPlacement(p importer.Placement) {
	fmt.Printf("Placement: left=%.1f top=%.1f\n", p.Left, p.Top)
}
