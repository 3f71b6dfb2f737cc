package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("Встроенный каталог не загрузился: %v", err)
	}

	if len(c.Bodies) != 10 {
		t.Errorf("Expected 10 bodies, got %d", len(c.Bodies))
	}
	if len(c.Constellations) != 15 {
		t.Errorf("Expected 15 constellations, got %d", len(c.Constellations))
	}

	keys := c.KeyMap()
	expected := map[string]string{
		"1": "Mercury", "2": "Venus", "3": "Earth", "4": "Mars", "5": "Jupiter",
		"6": "Saturn", "7": "Uranus", "8": "Neptune", "9": "Sun", "0": "EarthMoon",
	}
	for key, id := range expected {
		if keys[key] != id {
			t.Errorf("Key %q: expected %s, got %s", key, id, keys[key])
		}
	}

	standoff := c.StandoffTable()
	if standoff["sun"] != 15 || standoff["constellation"] != 50 || standoff["moon"] != 2 {
		t.Errorf("Unexpected standoff table: %v", standoff)
	}

	if !c.Display.ConstellationLabels || !c.Display.ConstellationLines {
		t.Error("Constellation labels and lines should be shown by default")
	}
}

func TestBuildBodiesConvertsDegrees(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatal(err)
	}

	for _, b := range c.BuildBodies() {
		if b.ID != "Earth" {
			continue
		}
		want := 23.44 * math.Pi / 180
		if math.Abs(b.AxialTilt-want) > 1e-12 {
			t.Errorf("Expected tilt %f rad, got %f", want, b.AxialTilt)
		}
		return
	}
	t.Fatal("Earth not found")
}

func TestBuildConstellationsOnSphere(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatal(err)
	}

	cons, err := c.BuildConstellations()
	if err != nil {
		t.Fatal(err)
	}
	for _, con := range cons {
		for _, s := range con.Stars {
			if d := s.Position.Len(); math.Abs(d-300) > 1e-9 {
				t.Errorf("%s/%s: expected distance 300, got %f", con.Name, s.Name, d)
			}
		}
	}
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
		substr  string
	}{
		{
			name: "missing standoff class",
			yaml: `
standoff: {sun: 15}
bodies:
  - {id: Sun, class: sun, radius: 3}
  - {id: Pluto, class: dwarf, radius: 0.1, orbit_radius: 60}
`,
			wantErr: ErrMissingStandoff,
		},
		{
			name: "key bound to unknown body",
			yaml: `
standoff: {sun: 15}
keys: {"1": Vulcan}
bodies:
  - {id: Sun, class: sun, radius: 3}
`,
			wantErr: ErrUnknownBody,
		},
		{
			name: "unknown parent",
			yaml: `
standoff: {moon: 2}
bodies:
  - {id: Moon, class: moon, parent: Earth, radius: 0.2, orbit_radius: 2}
`,
			wantErr: ErrUnknownBody,
		},
		{
			name: "duplicate id",
			yaml: `
standoff: {sun: 15}
bodies:
  - {id: Sun, class: sun, radius: 3}
  - {id: Sun, class: sun, radius: 3}
`,
			wantErr: ErrDuplicateID,
		},
		{
			name: "constellations without standoff row",
			yaml: `
standoff: {sun: 15}
bodies:
  - {id: Sun, class: sun, radius: 3}
constellations:
  - name: Tiny
    stars: [{name: A, ra: 1, dec: 1, brightness: 1}]
`,
			wantErr: ErrMissingStandoff,
		},
		{
			name: "connection out of range",
			yaml: `
standoff: {constellation: 50}
constellations:
  - name: Tiny
    stars: [{name: A, ra: 1, dec: 1, brightness: 1}]
    connections: [[0, 3]]
`,
			substr: "out of",
		},
		{
			name: "unknown field",
			yaml: `
standoff: {sun: 15}
planets: []
`,
			substr: "planets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if tt.substr != "" && !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("Expected error to mention %q, got %v", tt.substr, err)
			}
		})
	}
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `
standoff: {sun: 15}
keys: {"9": Sun}
bodies:
  - {id: Sun, class: sun, radius: 3}
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if got := c.BodyIDs(); len(got) != 1 || got[0] != "Sun" {
		t.Errorf("Unexpected bodies: %v", got)
	}

	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestViewConfigRoundTrip(t *testing.T) {
	orig := GetViewConfig()
	defer SetViewConfig(orig)

	cfg := DefaultViewConfig()
	cfg.Time.MaxScale = 10
	SetViewConfig(cfg)

	if got := GetTimeConfig().MaxScale; got != 10 {
		t.Errorf("Expected MaxScale 10, got %f", got)
	}
	if got := GetCameraConfig().AnimationDuration.Milliseconds(); got != 2000 {
		t.Errorf("Expected 2000ms animation, got %d", got)
	}
}

func TestLoadServerConfig(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.TickRate != 30 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}

	v.Set("tick_rate", 0)
	if _, err := Load(v); err == nil {
		t.Error("Expected error for zero tick rate")
	}

	v.Set("tick_rate", 30)
	v.Set("epoch", "yesterday")
	if _, err := Load(v); err == nil {
		t.Error("Expected error for bad epoch")
	}

	v.Set("epoch", "2000-01-01T12:00:00Z")
	cfg, err = Load(v)
	if err != nil {
		t.Fatal(err)
	}
	epoch, _ := cfg.EpochTime()
	if epoch.Year() != 2000 {
		t.Errorf("Unexpected epoch %v", epoch)
	}
}
