package effect

import "testing"

func TestOpIdentity(t *testing.T) {
	tests := []struct {
		op   Op
		want bool
	}{
		{Op{OpBrightness, 1}, true},
		{Op{OpBrightness, 1.2}, false},
		{Op{OpOpacity, 1}, true},
		{Op{OpHueRotate, 0}, true},
		{Op{OpBlur, 0}, true},
		{Op{OpBlur, 0.5}, false},
		{Op{OpInvert, 1}, false},
	}
	for _, tt := range tests {
		if got := tt.op.IsIdentity(); got != tt.want {
			t.Errorf("%v.IsIdentity() = %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestChainString(t *testing.T) {
	c := Chain{{OpBrightness, 1.2}, {OpHueRotate, 30}, {OpBlur, 2}}
	want := "brightness(1.20) hue-rotate(30.0deg) blur(2.00px)"
	if got := c.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := Chain(nil).String(); got != "none" {
		t.Errorf("empty String() = %q", got)
	}
}

func TestChainCompactAndSpatial(t *testing.T) {
	c := Chain{{OpBrightness, 1}, {OpContrast, 1.1}, {OpBlur, 0}}
	compact := c.Compact()
	if len(compact) != 1 || compact[0].Kind != OpContrast {
		t.Fatalf("Compact() = %v", compact)
	}
	if c.HasSpatial() {
		t.Error("zero blur must not count as spatial")
	}
	if !(Chain{{OpVignette, 0.3}}).HasSpatial() {
		t.Error("vignette is spatial")
	}
	if !c.Clone().Equal(c) {
		t.Error("Clone must be equal")
	}
}
