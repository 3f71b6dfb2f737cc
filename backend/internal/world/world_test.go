package world

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"solar-system/backend/internal/core/domain/entity"
)

// fixedView смотрит из eye вдоль dir, экранная точка игнорируется
type fixedView struct {
	eye mgl64.Vec3
	dir mgl64.Vec3
}

func (v fixedView) Eye() mgl64.Vec3 { return v.eye }

func (v fixedView) Unproject(mgl64.Vec2) mgl64.Vec3 { return v.eye.Add(v.dir) }

func sphere(name string, pos mgl64.Vec3, r float64) *Node {
	n := NewNode(name, KindBody)
	n.Position = pos
	n.Radius = r
	return n
}

func TestGraphAddFindRemove(t *testing.T) {
	g := NewGraph()
	group := NewNode("EarthGroup", KindGroup)
	group.Add(NewNode("Earth", KindBody))
	g.Add(nil, group)

	if _, ok := g.FindByName("Earth"); !ok {
		t.Fatal("Expected Earth to be indexed")
	}
	if got := g.Len(); got != 3 {
		t.Errorf("Expected 3 nodes, got %d", got)
	}

	if !g.Remove(group) {
		t.Fatal("Remove returned false")
	}
	if _, ok := g.FindByName("Earth"); ok {
		t.Error("Earth should be removed from index")
	}
	if g.Remove(g.Root()) {
		t.Error("Root must not be removable")
	}
}

func TestWorldPositionNested(t *testing.T) {
	parent := NewNode("p", KindGroup)
	parent.Position = mgl64.Vec3{10, 0, 0}
	parent.Rotation = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})

	child := NewNode("c", KindBody)
	child.Position = mgl64.Vec3{1, 0, 0}
	parent.Add(child)

	got := child.WorldPosition()
	want := mgl64.Vec3{10, 0, -1}
	if !got.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestRaycasterSortsByDistance(t *testing.T) {
	near := sphere("near", mgl64.Vec3{0, 0, -5}, 1)
	far := sphere("far", mgl64.Vec3{0, 0, -20}, 1)
	miss := sphere("miss", mgl64.Vec3{10, 0, -5}, 1)

	rc := NewRaycaster()
	rc.SetFromCamera(mgl64.Vec2{}, fixedView{dir: mgl64.Vec3{0, 0, -1}})

	hits := rc.IntersectNodes([]*Node{far, miss, near})
	if len(hits) != 2 {
		t.Fatalf("Expected 2 hits, got %d", len(hits))
	}
	if hits[0].Node != near || hits[1].Node != far {
		t.Errorf("Unexpected order: %s, %s", hits[0].Node.Name, hits[1].Node.Name)
	}
	if math.Abs(hits[0].Distance-4) > 1e-9 {
		t.Errorf("Expected distance 4, got %f", hits[0].Distance)
	}
}

func TestRaycasterLayersAndVisibility(t *testing.T) {
	collider := sphere("collider", mgl64.Vec3{0, 0, -5}, 1)
	collider.Layers = LayerColliders
	collider.Visible = false

	hiddenGroup := NewNode("hidden", KindGroup)
	hiddenGroup.Visible = false
	inHidden := sphere("inHidden", mgl64.Vec3{0, 0, -8}, 1)
	hiddenGroup.Add(inHidden)

	rc := NewRaycaster()
	rc.SetFromCamera(mgl64.Vec2{}, fixedView{dir: mgl64.Vec3{0, 0, -1}})

	if hits := rc.IntersectNodes([]*Node{collider, inHidden}); len(hits) != 0 {
		t.Errorf("Default layer should see nothing, got %d hits", len(hits))
	}

	rc.Layers = LayerColliders
	hits := rc.IntersectNodes([]*Node{collider, inHidden})
	if len(hits) != 1 || hits[0].Node != collider {
		t.Errorf("Invisible collider should be pickable on its layer, got %v", hits)
	}
}

func TestRaycasterInsideSphere(t *testing.T) {
	big := sphere("big", mgl64.Vec3{}, 10)

	rc := NewRaycaster()
	rc.SetFromCamera(mgl64.Vec2{}, fixedView{dir: mgl64.Vec3{1, 0, 0}})

	hits := rc.IntersectNodes([]*Node{big})
	if len(hits) != 1 || math.Abs(hits[0].Distance-10) > 1e-9 {
		t.Errorf("Expected exit hit at 10, got %v", hits)
	}
}

func testBodies() []*entity.CelestialBody {
	return []*entity.CelestialBody{
		{ID: "EarthMoon", Name: "Earth's Moon", Class: entity.ClassMoon, Radius: 0.27, OrbitRadius: 2, ParentID: "Earth"},
		{ID: "Sun", Name: "Sun", Class: entity.ClassSun, Radius: 3},
		{ID: "Earth", Name: "Earth", Class: entity.ClassTerrestrial, Radius: 1, OrbitRadius: 13, Atmosphere: "#87ceeb"},
		{ID: "Saturn", Name: "Saturn", Class: entity.ClassGasGiant, Radius: 2, OrbitRadius: 40,
			Ring: &entity.Ring{InnerRadius: 2.5, OuterRadius: 4}},
	}
}

func testConstellation() *entity.Constellation {
	return &entity.Constellation{
		Name: "Tri",
		Stars: []entity.Star{
			{Name: "A", Brightness: 1, Position: mgl64.Vec3{0, 0, -300}},
			{Name: "B", Brightness: 0.5, Position: mgl64.Vec3{30, 0, -300}},
			{Name: "C", Brightness: 0.8, Position: mgl64.Vec3{0, 30, -300}},
		},
		Connections: [][2]int{{0, 1}, {1, 2}},
	}
}

func TestBuildScene(t *testing.T) {
	bodies := testBodies()
	bodies[2].Position = mgl64.Vec3{13, 0, 0}
	bodies[0].OrbitAngle = 0
	bodies[0].Position = mgl64.Vec3{15, 0, 0}

	s, err := BuildScene(bodies, []*entity.Constellation{testConstellation()}, nil,
		DisplayFlags{BodyLines: true, ConstellationLabels: true, ConstellationLines: true})
	if err != nil {
		t.Fatalf("BuildScene failed: %v", err)
	}

	for _, name := range []string{
		"SunGroup", "Sun", "SunLabel", "SunGlow",
		"Earth", "EarthAtmosphere", "EarthOrbit",
		"SaturnRing", "EarthMoonGroup", "EarthMoonOrbit",
		"TriGroup", "TriStars", "TriLines", "TriLabel", "TriGlow", "TriCollider",
		BeltName, StarfieldName, ShuttleName,
	} {
		if _, ok := s.Graph.FindByName(name); !ok {
			t.Errorf("Node %s not found", name)
		}
	}

	if _, ok := s.Graph.FindByName("SunOrbit"); ok {
		t.Error("Stationary Sun must not have an orbit line")
	}

	moon := s.Bodies["EarthMoon"]
	if moon.Group.Parent() != s.Bodies["Earth"].Group {
		t.Error("Moon group should be nested in Earth group")
	}
	if got := moon.Mesh.WorldPosition(); !got.ApproxEqualThreshold(mgl64.Vec3{15, 0, 0}, 1e-9) {
		t.Errorf("Moon world position: expected (15,0,0), got %v", got)
	}

	tri := s.Constellations["Tri"]
	if tri.Collider.Visible || tri.Collider.Layers != LayerColliders {
		t.Error("Collider must be invisible and on the collider layer")
	}
	if len(tri.Lines.Points) != 4 {
		t.Errorf("Expected 4 line vertices, got %d", len(tri.Lines.Points))
	}
	if s.Bodies["Sun"].Label.Visible {
		t.Error("Body labels should follow the display flag")
	}
	if !tri.Label.Visible || tri.Glow.Visible {
		t.Error("Constellation label should be visible and glow hidden")
	}
}

func TestBuildSceneUnknownParent(t *testing.T) {
	bodies := []*entity.CelestialBody{
		{ID: "Moon", Class: entity.ClassMoon, Radius: 0.2, OrbitRadius: 2, ParentID: "Nowhere"},
	}
	if _, err := BuildScene(bodies, nil, nil, DisplayFlags{}); err == nil {
		t.Error("Expected error for unknown parent")
	}
}

func TestDecorations(t *testing.T) {
	s, err := BuildScene(testBodies(), []*entity.Constellation{testConstellation()}, nil, DisplayFlags{})
	if err != nil {
		t.Fatal(err)
	}

	bodies := s.BodyDecorations()
	bodies.SetGlowVisible("Earth", true)
	bodies.SetLinesVisible("Sun", true) // у Солнца нет орбиты, вызов безопасен
	bodies.SetLabelVisible("Pluto", true)
	if !s.Bodies["Earth"].Glow.Visible {
		t.Error("Earth glow should be visible")
	}
	if bodies.Has("Pluto") || !bodies.Has("Earth") {
		t.Error("Has reports wrong membership")
	}

	cons := s.ConstellationDecorations()
	cons.SetEntityVisible("Tri", false)
	if s.Constellations["Tri"].Label.EffectiveVisible() {
		t.Error("Hidden constellation group should hide its label")
	}
}
