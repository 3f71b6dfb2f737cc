package picking

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"solar-system/backend/internal/core/domain/entity"
	"solar-system/backend/internal/world"
)

type fixedView struct {
	eye mgl64.Vec3
	dir mgl64.Vec3
}

func (v fixedView) Eye() mgl64.Vec3 { return v.eye }

func (v fixedView) Unproject(mgl64.Vec2) mgl64.Vec3 { return v.eye.Add(v.dir) }

// skyEye точка вне Солнца, из которой видны созвездия
var skyEye = mgl64.Vec3{100, 0, 0}

func lookAt(target mgl64.Vec3) fixedView {
	return fixedView{eye: skyEye, dir: target.Sub(skyEye)}
}

func buildScene(t *testing.T) *world.Scene {
	t.Helper()

	bodies := []*entity.CelestialBody{
		{ID: "Sun", Class: entity.ClassSun, Radius: 3},
		{ID: "Saturn", Class: entity.ClassGasGiant, Radius: 1, OrbitRadius: 10,
			Atmosphere: "#ffffff", Ring: &entity.Ring{InnerRadius: 1.5, OuterRadius: 3}},
	}
	bodies[1].Position = mgl64.Vec3{10, 0, 0}

	orion := &entity.Constellation{
		Name: "Orion",
		Stars: []entity.Star{
			{Name: "Betelgeuse", Brightness: 1, Position: mgl64.Vec3{0, 0, -300}},
			{Name: "Rigel", Brightness: 1, Position: mgl64.Vec3{0, 40, -300}},
		},
	}

	s, err := world.BuildScene(bodies, []*entity.Constellation{orion}, nil, world.DisplayFlags{})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestClickPicksBodyMeshOnly(t *testing.T) {
	s := buildScene(t)
	r := NewResolver(s.Graph)

	// Луч проходит через кольцо Сатурна мимо самой планеты
	view := fixedView{eye: mgl64.Vec3{12.5, 0, 20}, dir: mgl64.Vec3{0, 0, -1}}
	if id, ok := r.Click(mgl64.Vec2{}, view); ok {
		t.Errorf("Ring must not be clickable, got %s", id)
	}

	view = fixedView{eye: mgl64.Vec3{10, 0, 20}, dir: mgl64.Vec3{0, 0, -1}}
	id, ok := r.Click(mgl64.Vec2{}, view)
	if !ok || id != "Saturn" {
		t.Errorf("Expected Saturn, got %q (%v)", id, ok)
	}
}

func TestClickNearestWins(t *testing.T) {
	s := buildScene(t)
	r := NewResolver(s.Graph)

	// С оси x камера видит Сатурн перед Солнцем
	view := fixedView{eye: mgl64.Vec3{30, 0, 0}, dir: mgl64.Vec3{-1, 0, 0}}
	id, ok := r.Click(mgl64.Vec2{}, view)
	if !ok || id != "Saturn" {
		t.Errorf("Expected nearest body Saturn, got %q", id)
	}
}

func TestDoubleClickStarBeatsCollider(t *testing.T) {
	s := buildScene(t)
	r := NewResolver(s.Graph)

	view := lookAt(mgl64.Vec3{0, 0, -300})
	name, ok := r.DoubleClick(mgl64.Vec2{}, view)
	if !ok || name != "Orion" {
		t.Errorf("Expected Orion via star, got %q", name)
	}

	// Между звездами: промах по звездам, попадание в коллайдер
	view = lookAt(mgl64.Vec3{0, 20, -300})
	name, ok = r.DoubleClick(mgl64.Vec2{}, view)
	if !ok || name != "Orion" {
		t.Errorf("Expected Orion via collider fallback, got %q", name)
	}

	view = fixedView{eye: skyEye, dir: mgl64.Vec3{1, 0, 0}}
	if _, ok := r.DoubleClick(mgl64.Vec2{}, view); ok {
		t.Error("Expected empty sky")
	}
}

func TestHoverIgnoresColliders(t *testing.T) {
	s := buildScene(t)
	r := NewResolver(s.Graph)

	view := lookAt(mgl64.Vec3{0, 20, -300})
	if c := r.Hover(mgl64.Vec2{}, view); c != CursorDefault {
		t.Errorf("Collider must not produce pointer, got %s", c)
	}

	view = lookAt(mgl64.Vec3{0, 40, -300})
	if c := r.Hover(mgl64.Vec2{}, view); c != CursorPointer {
		t.Errorf("Star should produce pointer, got %s", c)
	}

	view = fixedView{eye: mgl64.Vec3{0, 0, 20}, dir: mgl64.Vec3{0, 0, -1}}
	if c := r.Hover(mgl64.Vec2{}, view); c != CursorPointer {
		t.Errorf("Sun should produce pointer, got %s", c)
	}
}

func TestHiddenConstellationNotPickable(t *testing.T) {
	s := buildScene(t)
	s.ConstellationDecorations().SetEntityVisible("Orion", false)
	r := NewResolver(s.Graph)

	view := lookAt(mgl64.Vec3{0, 0, -300})
	if _, ok := r.DoubleClick(mgl64.Vec2{}, view); ok {
		t.Error("Hidden constellation must not be pickable")
	}
}
