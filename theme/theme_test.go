package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Southclaws/fault/ftag"
)

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.gpl")
	gpl := "GIMP Palette\nName: Test\nColumns: 2\n# comment\n  0   0   0\tblack\n255 255 255\twhite\nnot a color\n"
	if err := os.WriteFile(path, []byte(gpl), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadGPL(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Test" || len(p.Colors) != 2 {
		t.Fatalf("palette = %+v", p)
	}
	if got := p.Lookup(0.5); got != (RGB{127, 127, 127}) {
		t.Errorf("Lookup(0.5) = %v", got)
	}
	if p.Lookup(-1) != p.Colors[0] || p.Lookup(2) != p.Colors[1] {
		t.Error("Lookup should clamp")
	}
}

func TestLoadGPLErrors(t *testing.T) {
	if _, err := LoadGPL(filepath.Join(t.TempDir(), "missing.gpl")); ftag.Get(err) != ftag.NotFound {
		t.Errorf("missing file tag = %v", ftag.Get(err))
	}

	empty := filepath.Join(t.TempDir(), "empty.gpl")
	os.WriteFile(empty, []byte("GIMP Palette\n"), 0644)
	if _, err := LoadGPL(empty); ftag.Get(err) != ftag.InvalidArgument {
		t.Errorf("empty palette tag = %v", ftag.Get(err))
	}

	if p := Load(empty); p.Name != DefaultPalette().Name {
		t.Error("Load should fall back to the default palette")
	}
	if p := Load(""); len(p.Colors) == 0 {
		t.Error("default palette is empty")
	}
}

func TestHueColor(t *testing.T) {
	tests := []struct {
		hue, sat int
		want     string
	}{
		{0, 254, "#ff0000"},
		{0, 0, "#ffffff"},
		{21845, 254, "#00ff00"},
		{43690, 254, "#0000ff"},
		{0, 999, "#ff0000"},
		{65535, 254, "#ff0000"},
		{10923, 127, "#ffff80"},
	}
	for _, tt := range tests {
		if got := HueColor(tt.hue, tt.sat); string(got) != tt.want {
			t.Errorf("HueColor(%d, %d) = %s, want %s", tt.hue, tt.sat, got, tt.want)
		}
	}
}
