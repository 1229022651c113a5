package render

import "testing"

func TestTextExtents(t *testing.T) {
	tests := []struct {
		s      string
		size   float64
		wd, ht float64
	}{
		{"", 13, 0, 0},
		{"abc", 0, 0, 0},
		{"abc", 13, 21, 13},
		{"abc", 26, 42, 26},
	}
	for _, tt := range tests {
		wd, ht := TextExtents(tt.s, tt.size)
		if wd != tt.wd || ht != tt.ht {
			t.Errorf("TextExtents(%q, %v) = %v, %v, want %v, %v", tt.s, tt.size, wd, ht, tt.wd, tt.ht)
		}
	}
}

func TestColor(t *testing.T) {
	c := Color("red", 0.5)
	if c.R != 1 || c.G != 0 || c.B != 0 || c.A != 0.5 {
		t.Errorf("Color(red, 0.5) = %+v, want {1 0 0 0.5}", c)
	}
	c = Color("#00ff00", 2)
	if c.G != 1 || c.A != 1 {
		t.Errorf("Color(#00ff00, 2) = %+v, want opaque green", c)
	}
	if d := Color("", 1); d != Color("#ffff00", 1) {
		t.Errorf("Color(\"\", 1) = %+v, want default yellow", d)
	}
}

func TestHex(t *testing.T) {
	tests := []struct{ in, want string }{
		{"orange", "#ffa500"},
		{"#0F0", "#00ff00"},
		{"", "#ffff00"},
	}
	for _, tt := range tests {
		if got := Hex(tt.in); got != tt.want {
			t.Errorf("Hex(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
