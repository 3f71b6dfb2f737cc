package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"solar-system/backend/internal/core/domain/entity"
)

const (
	orbitSegments = 128
	labelOffset   = 0.6
	glowScale     = 1.3
	atmosScale    = 1.05
)

// Имена узлов, которые ищет клиент и тесты
const (
	BeltName      = "AsteroidBelt"
	StarfieldName = "Starfield"
	ShuttleName   = "Shuttle"
)

// DisplayFlags начальная видимость меток и линий
type DisplayFlags struct {
	BodyLabels          bool
	BodyLines           bool
	ConstellationLabels bool
	ConstellationLines  bool
}

// BodyNodes узлы, из которых состоит тело на сцене
type BodyNodes struct {
	Group      *Node
	Mesh       *Node
	Atmosphere *Node
	Ring       *Node
	Label      *Node
	Glow       *Node
	Orbit      *Node
}

// ConstellationNodes узлы созвездия
type ConstellationNodes struct {
	Group    *Node
	Stars    *Node
	Lines    *Node
	Label    *Node
	Glow     *Node
	Collider *Node
}

// Scene граф сцены плюс быстрый доступ к узлам сущностей
type Scene struct {
	Graph *Graph

	Bodies         map[string]*BodyNodes
	Constellations map[string]*ConstellationNodes

	Belt      *Node
	Starfield *Node
	Shuttle   *Node

	bodyOrder          []string
	constellationOrder []string
}

// BuildScene создает граф по моделям. Спутник вкладывается в группу родителя.
func BuildScene(bodies []*entity.CelestialBody, constellations []*entity.Constellation,
	starfield []mgl64.Vec3, flags DisplayFlags) (*Scene, error) {

	s := &Scene{
		Graph:          NewGraph(),
		Bodies:         make(map[string]*BodyNodes, len(bodies)),
		Constellations: make(map[string]*ConstellationNodes, len(constellations)),
	}

	for _, b := range bodies {
		if _, dup := s.Bodies[b.ID]; dup {
			return nil, fmt.Errorf("duplicate body %s", b.ID)
		}
		s.Bodies[b.ID] = newBodyNodes(b, flags)
		s.bodyOrder = append(s.bodyOrder, b.ID)
	}

	// Родители прикрепляются раньше детей, иначе индекс имен не увидит поддерево
	attached := make(map[string]bool, len(bodies))
	var attach func(b *entity.CelestialBody, depth int) error
	byID := make(map[string]*entity.CelestialBody, len(bodies))
	for _, b := range bodies {
		byID[b.ID] = b
	}
	attach = func(b *entity.CelestialBody, depth int) error {
		if attached[b.ID] {
			return nil
		}
		if depth > len(bodies) {
			return fmt.Errorf("parent cycle at body %s", b.ID)
		}

		var parent *Node
		if b.IsSatellite() {
			p, ok := byID[b.ParentID]
			if !ok {
				return fmt.Errorf("body %s: unknown parent %s", b.ID, b.ParentID)
			}
			if err := attach(p, depth+1); err != nil {
				return err
			}
			parent = s.Bodies[p.ID].Group
		}

		nodes := s.Bodies[b.ID]
		s.Graph.Add(parent, nodes.Group)
		if nodes.Orbit != nil {
			s.Graph.Add(parent, nodes.Orbit)
		}
		attached[b.ID] = true
		return nil
	}
	for _, b := range bodies {
		if err := attach(b, 0); err != nil {
			return nil, err
		}
	}

	for _, c := range constellations {
		if _, dup := s.Constellations[c.Name]; dup {
			return nil, fmt.Errorf("duplicate constellation %s", c.Name)
		}
		nodes := newConstellationNodes(c, flags)
		s.Constellations[c.Name] = nodes
		s.constellationOrder = append(s.constellationOrder, c.Name)
		s.Graph.Add(nil, nodes.Group)
	}

	s.Belt = NewNode(BeltName, KindBelt)
	s.Graph.Add(nil, s.Belt)

	s.Starfield = NewNode(StarfieldName, KindStarfield)
	s.Starfield.Points = starfield
	s.Starfield.Color = "#ffffff"
	s.Graph.Add(nil, s.Starfield)

	s.Shuttle = NewNode(ShuttleName, KindShuttle)
	s.Shuttle.Visible = false
	s.Shuttle.Color = "#cccccc"
	s.Graph.Add(nil, s.Shuttle)

	s.SyncBodies(bodies)
	return s, nil
}

func newBodyNodes(b *entity.CelestialBody, flags DisplayFlags) *BodyNodes {
	nodes := &BodyNodes{
		Group: NewNode(b.ID+"Group", KindGroup),
		Mesh:  NewNode(b.ID, KindBody),
	}
	data := UserData{BodyID: b.ID}

	nodes.Group.Data = data
	nodes.Mesh.Data = data
	nodes.Mesh.Radius = b.Radius
	nodes.Mesh.Color = b.Color
	nodes.Group.Add(nodes.Mesh)

	if b.Atmosphere != "" {
		nodes.Atmosphere = NewNode(b.ID+"Atmosphere", KindAtmosphere)
		nodes.Atmosphere.Radius = b.Radius * atmosScale
		nodes.Atmosphere.Color = b.Atmosphere
		nodes.Atmosphere.Data = data
		nodes.Group.Add(nodes.Atmosphere)
	}

	if b.Ring != nil {
		nodes.Ring = NewNode(b.ID+"Ring", KindRing)
		nodes.Ring.Radius = b.Ring.OuterRadius
		nodes.Ring.Inner = b.Ring.InnerRadius
		nodes.Ring.Color = b.Ring.Color
		nodes.Ring.Data = data
		// Кольцо лежит в плоскости экватора
		nodes.Ring.Rotation = mgl64.QuatRotate(b.AxialTilt, mgl64.Vec3{0, 0, 1}).
			Mul(mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0}))
		nodes.Group.Add(nodes.Ring)
	}

	nodes.Label = NewNode(b.ID+"Label", KindLabel)
	nodes.Label.Text = b.Name
	nodes.Label.Position = mgl64.Vec3{0, b.Radius + labelOffset, 0}
	nodes.Label.Visible = flags.BodyLabels
	nodes.Label.Data = data
	nodes.Group.Add(nodes.Label)

	nodes.Glow = NewNode(b.ID+"Glow", KindGlow)
	nodes.Glow.Radius = b.Radius * glowScale
	nodes.Glow.Color = "#4a90e2"
	nodes.Glow.Visible = false
	nodes.Glow.Data = data
	nodes.Group.Add(nodes.Glow)

	if !b.IsStationary() {
		nodes.Orbit = NewNode(b.ID+"Orbit", KindOrbit)
		nodes.Orbit.Points = circle(b.OrbitRadius, orbitSegments)
		nodes.Orbit.Color = "#444444"
		nodes.Orbit.Visible = flags.BodyLines
		nodes.Orbit.Data = data
	}

	return nodes
}

func newConstellationNodes(c *entity.Constellation, flags DisplayFlags) *ConstellationNodes {
	data := UserData{ConstellationName: c.Name}
	nodes := &ConstellationNodes{
		Group: NewNode(c.Name+"Group", KindGroup),
		Stars: NewNode(c.Name+"Stars", KindStars),
		Lines: NewNode(c.Name+"Lines", KindLines),
		Label: NewNode(c.Name+"Label", KindLabel),
		Glow:  NewNode(c.Name+"Glow", KindGlow),
	}
	nodes.Group.Data = data

	for _, star := range c.Stars {
		n := NewNode(star.Name, KindStar)
		n.Position = star.Position
		n.Radius = 0.5 * star.Brightness
		n.Color = entity.StarColor(star.Brightness)
		n.Data = UserData{ConstellationName: c.Name, StarName: star.Name}
		nodes.Stars.Add(n)

		nodes.Glow.Points = append(nodes.Glow.Points, star.Position)
	}
	nodes.Stars.Data = data
	nodes.Group.Add(nodes.Stars)

	for _, conn := range c.Connections {
		nodes.Lines.Points = append(nodes.Lines.Points,
			c.Stars[conn[0]].Position, c.Stars[conn[1]].Position)
	}
	nodes.Lines.Color = "#4a90e2"
	nodes.Lines.Visible = flags.ConstellationLines
	nodes.Lines.Data = data
	nodes.Group.Add(nodes.Lines)

	center := c.Center()
	nodes.Label.Text = c.Name
	if c.Symbol != "" {
		nodes.Label.Text = c.Symbol + " " + c.Name
	}
	nodes.Label.Position = center
	nodes.Label.Visible = flags.ConstellationLabels
	nodes.Label.Data = data
	nodes.Group.Add(nodes.Label)

	nodes.Glow.Color = "#4a90e2"
	nodes.Glow.Visible = false
	nodes.Glow.Data = data
	nodes.Group.Add(nodes.Glow)

	colliderCenter, radius := c.Collider()
	nodes.Collider = NewNode(c.Name+"Collider", KindCollider)
	nodes.Collider.Position = colliderCenter
	nodes.Collider.Radius = radius
	nodes.Collider.Visible = false
	nodes.Collider.Layers = LayerColliders
	nodes.Collider.Data = data
	nodes.Group.Add(nodes.Collider)

	return nodes
}

func circle(radius float64, segments int) []mgl64.Vec3 {
	points := make([]mgl64.Vec3, 0, segments+1)
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		points = append(points, mgl64.Vec3{math.Cos(a) * radius, 0, math.Sin(a) * radius})
	}
	return points
}

// SyncBodies переносит позиции и ориентации тел в узлы
func (s *Scene) SyncBodies(bodies []*entity.CelestialBody) {
	for _, b := range bodies {
		nodes, ok := s.Bodies[b.ID]
		if !ok {
			continue
		}
		if b.IsSatellite() {
			nodes.Group.Position = b.OrbitOffset()
		} else {
			nodes.Group.Position = b.Position
		}
		nodes.Mesh.Rotation = b.Orientation()
		if nodes.Atmosphere != nil {
			nodes.Atmosphere.Rotation = nodes.Mesh.Rotation
		}
	}
}

// SyncShuttle обновляет узел шаттла
func (s *Scene) SyncShuttle(position mgl64.Vec3, rotation mgl64.Quat, visible bool) {
	s.Shuttle.Position = position
	s.Shuttle.Rotation = rotation
	s.Shuttle.Visible = visible
}

// BodyIDs возвращает id тел в порядке каталога
func (s *Scene) BodyIDs() []string {
	return append([]string(nil), s.bodyOrder...)
}

// ConstellationNames возвращает имена созвездий в порядке каталога
func (s *Scene) ConstellationNames() []string {
	return append([]string(nil), s.constellationOrder...)
}
