package core

import (
	"encoding/json"
	"testing"
)

func TestDirectionOpposite(t *testing.T) {
	tests := []struct {
		name string
		a, b Direction
		want bool
	}{
		{"right vs left", DirRight, DirLeft, true},
		{"up vs down", DirUp, DirDown, true},
		{"right vs up", DirRight, DirUp, false},
		{"same heading", DirLeft, DirLeft, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.IsOpposite(tc.b); got != tc.want {
				t.Errorf("IsOpposite() = %v, expected %v", got, tc.want)
			}
		})
	}
}

func TestDirectionValid(t *testing.T) {
	for _, d := range Directions {
		if !d.Valid() {
			t.Errorf("%v should be valid", d)
		}
	}
	for _, d := range []Direction{{0, 0}, {1, 1}, {2, 0}, {-1, 1}} {
		if d.Valid() {
			t.Errorf("%v should not be valid", d)
		}
	}
}

func TestPointIn(t *testing.T) {
	if !(Point{X: 0, Y: 0}).In(30, 20) {
		t.Error("origin should be inside the grid")
	}
	if (Point{X: 30, Y: 0}).In(30, 20) {
		t.Error("x == width should be outside")
	}
	if (Point{X: -1, Y: 8}).In(30, 20) {
		t.Error("negative x should be outside")
	}
}

func TestPointJSON(t *testing.T) {
	data, err := json.Marshal(Point{X: 9, Y: 8})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "[9,8]" {
		t.Errorf("Marshal = %s, expected [9,8]", data)
	}

	var p Point
	if err := json.Unmarshal([]byte("[3,4]"), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if p != (Point{X: 3, Y: 4}) {
		t.Errorf("Unmarshal = %+v", p)
	}

	if err := json.Unmarshal([]byte("[1,2,3]"), &p); err == nil {
		t.Error("expected error for 3 coordinates")
	}
}

func TestParseColor(t *testing.T) {
	for _, c := range Palette {
		got, ok := ParseColor(c.String())
		if !ok || got != c {
			t.Errorf("ParseColor(%q) = %v, %v", c.String(), got, ok)
		}
	}
	if _, ok := ParseColor("Magenta"); ok {
		t.Error("magenta is not in the palette")
	}
	if got, ok := ParseColor(" Red "); !ok || got != ColorRed {
		t.Error("ParseColor should trim and ignore case")
	}
}
