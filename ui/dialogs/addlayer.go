package dialogs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"image-studio/internal/drawable"
	"image-studio/pkg/colorutil"
	"image-studio/pkg/geometry"
)

// optionalColor parses a hex entry; an empty entry yields nil.
func optionalColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	c, err := colorutil.ParseHex(s)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// parseTextStyle builds a text style from dialog entries.
func parseTextStyle(fg, bg, scale string) (drawable.TextStyle, error) {
	style := drawable.DefaultTextStyle()
	c, err := optionalColor(fg)
	if err != nil {
		return style, fmt.Errorf("text color: %w", err)
	}
	if c != nil {
		style.Color = c
	}
	if style.Background, err = optionalColor(bg); err != nil {
		return style, fmt.Errorf("background: %w", err)
	}
	if s := strings.TrimSpace(scale); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 16 {
			return style, fmt.Errorf("scale must be 1-16")
		}
		style.Scale = n
	}
	return style, nil
}

// ShowAddText asks for a text layer's content and style.
func ShowAddText(window fyne.Window, onAdd func(string, drawable.TextStyle)) {
	text := widget.NewMultiLineEntry()
	text.SetPlaceHolder("Text")
	fg := widget.NewEntry()
	fg.SetText("#000000")
	bg := widget.NewEntry()
	bg.SetPlaceHolder("transparent")
	scale := widget.NewSelect([]string{"1", "2", "3", "4", "6", "8", "12", "16"}, nil)
	scale.SetSelected("3")

	items := []*widget.FormItem{
		widget.NewFormItem("Text", text),
		widget.NewFormItem("Color", fg),
		widget.NewFormItem("Background", bg),
		widget.NewFormItem("Scale", scale),
	}
	dlg := dialog.NewForm("Add Text", "Add", "Cancel", items, func(ok bool) {
		if !ok || strings.TrimSpace(text.Text) == "" {
			return
		}
		style, err := parseTextStyle(fg.Text, bg.Text, scale.Selected)
		if err != nil {
			dialog.ShowError(err, window)
			return
		}
		onAdd(text.Text, style)
	}, window)
	dlg.Resize(fyne.NewSize(400, 300))
	dlg.Show()
}

// parseShape builds a shape request from dialog entries.
func parseShape(kind, width, height, fill, stroke, strokeWidth string) (drawable.ShapeKind, geometry.Size, drawable.ShapeStyle, error) {
	var style drawable.ShapeStyle
	k, err := drawable.ParseShapeKind(kind)
	if err != nil {
		return 0, geometry.Size{}, style, err
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(width), 64)
	if err != nil || w <= 0 {
		return 0, geometry.Size{}, style, fmt.Errorf("width must be positive")
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(height), 64)
	if err != nil || h <= 0 {
		return 0, geometry.Size{}, style, fmt.Errorf("height must be positive")
	}
	if style.Fill, err = optionalColor(fill); err != nil {
		return 0, geometry.Size{}, style, fmt.Errorf("fill: %w", err)
	}
	if style.Stroke, err = optionalColor(stroke); err != nil {
		return 0, geometry.Size{}, style, fmt.Errorf("stroke: %w", err)
	}
	if s := strings.TrimSpace(strokeWidth); s != "" {
		if style.StrokeWidth, err = strconv.ParseFloat(s, 64); err != nil || style.StrokeWidth < 0 {
			return 0, geometry.Size{}, style, fmt.Errorf("stroke width must be a non-negative number")
		}
	}
	return k, geometry.NewSize(w, h), style, nil
}

// ShowAddShape asks for a shape layer's kind, size and style.
func ShowAddShape(window fyne.Window, onAdd func(drawable.ShapeKind, geometry.Size, drawable.ShapeStyle)) {
	kind := widget.NewSelect([]string{
		drawable.ShapeRect.String(), drawable.ShapeEllipse.String(), drawable.ShapeLine.String(),
	}, nil)
	kind.SetSelected(drawable.ShapeRect.String())
	width := widget.NewEntry()
	width.SetText("200")
	height := widget.NewEntry()
	height.SetText("120")
	fill := widget.NewEntry()
	fill.SetText("#2E6FD8")
	stroke := widget.NewEntry()
	stroke.SetPlaceHolder("none")
	strokeWidth := widget.NewEntry()
	strokeWidth.SetText("2")

	items := []*widget.FormItem{
		widget.NewFormItem("Shape", kind),
		widget.NewFormItem("Width (px)", width),
		widget.NewFormItem("Height (px)", height),
		widget.NewFormItem("Fill", fill),
		widget.NewFormItem("Stroke", stroke),
		widget.NewFormItem("Stroke width", strokeWidth),
	}
	dlg := dialog.NewForm("Add Shape", "Add", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		k, size, style, err := parseShape(kind.Selected, width.Text, height.Text, fill.Text, stroke.Text, strokeWidth.Text)
		if err != nil {
			dialog.ShowError(err, window)
			return
		}
		onAdd(k, size, style)
	}, window)
	dlg.Resize(fyne.NewSize(380, 360))
	dlg.Show()
}
