package viewport

import "fmt"

// Handle is one of the eight border-resize grips.
type Handle int

const (
	HandleN Handle = iota
	HandleS
	HandleE
	HandleW
	HandleNE
	HandleNW
	HandleSE
	HandleSW
)

var handleNames = [...]string{"n", "s", "e", "w", "ne", "nw", "se", "sw"}

func (h Handle) String() string {
	if h < 0 || int(h) >= len(handleNames) {
		return fmt.Sprintf("handle(%d)", int(h))
	}
	return handleNames[h]
}

// ParseHandle maps "n", "se", ... to a Handle.
func ParseHandle(s string) (Handle, error) {
	for i, n := range handleNames {
		if n == s {
			return Handle(i), nil
		}
	}
	return 0, fmt.Errorf("unknown resize handle %q", s)
}

// axes returns the sign with which a pointer delta changes width and height.
// Zero means the axis is not affected by this handle.
func (h Handle) axes() (sx, sy float64) {
	switch h {
	case HandleN:
		return 0, -1
	case HandleS:
		return 0, 1
	case HandleE:
		return 1, 0
	case HandleW:
		return -1, 0
	case HandleNE:
		return 1, -1
	case HandleNW:
		return -1, -1
	case HandleSE:
		return 1, 1
	case HandleSW:
		return -1, 1
	}
	return 0, 0
}
