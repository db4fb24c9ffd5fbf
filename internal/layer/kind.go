package layer

import "fmt"

// Kind is the closed set of layer kinds.
type Kind int

const (
	KindImage Kind = iota
	KindText
	KindShape
	KindBackground
)

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindImage, KindText, KindShape, KindBackground}
}

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindText:
		return "text"
	case KindShape:
		return "shape"
	case KindBackground:
		return "background"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of String.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown layer kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
