package colorutil

import (
	"image/color"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#fff", color.NRGBA{255, 255, 255, 255}},
		{"#102030", color.NRGBA{0x10, 0x20, 0x30, 255}},
		{"#10203080", color.NRGBA{0x10, 0x20, 0x30, 0x80}},
		{"a0b0c0", color.NRGBA{0xa0, 0xb0, 0xc0, 255}},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if err != nil {
			t.Fatalf("ParseHex(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseHex("#12"); err == nil {
		t.Error("expected error for short hex")
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := color.NRGBA{1, 2, 3, 4}
	got, err := ParseHex(Hex(c))
	if err != nil || got != c {
		t.Errorf("round trip = %v, %v", got, err)
	}
}

func TestClamp8(t *testing.T) {
	if Clamp8(-3) != 0 || Clamp8(300) != 255 || Clamp8(127.6) != 128 {
		t.Error("Clamp8 bounds wrong")
	}
}
