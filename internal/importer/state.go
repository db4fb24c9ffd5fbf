package importer

import (
	"fmt"
)

// State is the import decision state.
type State int

const (
	StateIdle State = iota
	StateAwaitingDecision
	StateResizing
	StateDiscarding
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingDecision:
		return "awaiting-decision"
	case StateResizing:
		return "resizing"
	case StateDiscarding:
		return "discarding"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Decision resolves a dimension conflict.
type Decision int

const (
	// DecisionResizeCanvas resizes the canvas to the image's native size.
	DecisionResizeCanvas Decision = iota
	// DecisionResizeAndRescale auto-fits the canvas and resamples the image
	// to fill it.
	DecisionResizeAndRescale
	// DecisionDiscard drops the new image and keeps the current canvas.
	DecisionDiscard
)

func (d Decision) String() string {
	switch d {
	case DecisionResizeCanvas:
		return "resize-canvas"
	case DecisionResizeAndRescale:
		return "resize-and-rescale"
	case DecisionDiscard:
		return "discard"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// ParseDecision is the inverse of String.
func ParseDecision(s string) (Decision, error) {
	for _, d := range []Decision{DecisionResizeCanvas, DecisionResizeAndRescale, DecisionDiscard} {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown decision %q", s)
}

// Conflict describes an import whose native size differs from the canvas.
type Conflict struct {
	CanvasWidth  int    `json:"canvasWidth"`
	CanvasHeight int    `json:"canvasHeight"`
	ImageWidth   int    `json:"imageWidth"`
	ImageHeight  int    `json:"imageHeight"`
	Fingerprint  string `json:"fingerprint"`
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("image is %dx%d but canvas is %dx%d", c.ImageWidth, c.ImageHeight, c.CanvasWidth, c.CanvasHeight)
}
