package entity

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gonum/floats"
)

func TestRaDecToCartesian(t *testing.T) {
	tests := []struct {
		name   string
		ra     float64
		dec    float64
		expect mgl64.Vec3
	}{
		{"vernal equinox", 0, 0, mgl64.Vec3{300, 0, 0}},
		{"six hours", 6, 0, mgl64.Vec3{0, 0, 300}},
		{"north pole", 0, 90, mgl64.Vec3{0, 300, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RaDecToCartesian(tt.ra, tt.dec, CelestialRadius)
			if !got.ApproxEqualThreshold(tt.expect, 1e-9) {
				t.Errorf("Expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestConstellationCenterAndCollider(t *testing.T) {
	c := &Constellation{
		Name: "Box",
		Stars: []Star{
			{Name: "a", Position: mgl64.Vec3{0, 0, 0}},
			{Name: "b", Position: mgl64.Vec3{10, 0, 0}},
			{Name: "c", Position: mgl64.Vec3{10, 4, 0}},
			{Name: "d", Position: mgl64.Vec3{0, 4, 2}},
		},
	}

	center := c.Center()
	if !center.ApproxEqualThreshold(mgl64.Vec3{5, 2, 0.5}, 1e-12) {
		t.Errorf("Unexpected center %v", center)
	}

	colliderCenter, radius := c.Collider()
	if !colliderCenter.ApproxEqualThreshold(mgl64.Vec3{5, 2, 1}, 1e-12) {
		t.Errorf("Unexpected collider center %v", colliderCenter)
	}
	if !floats.EqualWithinAbs(radius, 8, 1e-12) {
		t.Errorf("Expected radius 0.8*10 = 8, got %f", radius)
	}
}

func TestConstellationValidate(t *testing.T) {
	c := &Constellation{Name: "Bad", Stars: []Star{{Name: "a"}}, Connections: [][2]int{{0, 1}}}
	if err := c.Validate(); err == nil {
		t.Error("Expected out of range connection to fail")
	}

	c.Connections = [][2]int{{0, 0}}
	if err := c.Validate(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	empty := &Constellation{Name: "Empty"}
	if err := empty.Validate(); err == nil {
		t.Error("Expected empty constellation to fail")
	}
}

func TestBodyOrbitOffset(t *testing.T) {
	sun := &CelestialBody{ID: "Sun"}
	if !sun.IsStationary() || sun.OrbitOffset() != (mgl64.Vec3{}) {
		t.Error("Sun should be stationary at its center")
	}

	b := &CelestialBody{OrbitRadius: 4, OrbitAngle: math.Pi / 2}
	if !b.OrbitOffset().ApproxEqualThreshold(mgl64.Vec3{0, 0, 4}, 1e-12) {
		t.Errorf("Unexpected offset %v", b.OrbitOffset())
	}
}

func TestBodyOrientationUnit(t *testing.T) {
	b := &CelestialBody{AxialTilt: 0.41, RotationAngle: 123.4}
	if l := b.Orientation().Len(); !floats.EqualWithinAbs(l, 1, 1e-12) {
		t.Errorf("Orientation must be a unit quaternion, len=%f", l)
	}
}

func TestFocusTarget(t *testing.T) {
	if !(FocusTarget{}).IsNone() {
		t.Error("Zero FocusTarget should be none")
	}
	f := FocusTarget{Kind: FocusConstellation, ID: "Orion"}
	if f.IsNone() || f.Kind.String() != "constellation" {
		t.Errorf("Unexpected focus %+v", f)
	}
}
