package world

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Kind тип узла сцены. По нему клиент выбирает, что рисовать,
// а фильтры выбора решают, что можно кликнуть.
type Kind int

const (
	KindGroup Kind = iota
	KindBody
	KindAtmosphere
	KindRing
	KindLabel
	KindGlow
	KindOrbit
	KindStars
	KindStar
	KindLines
	KindCollider
	KindBelt
	KindStarfield
	KindShuttle
)

var kindNames = map[Kind]string{
	KindGroup:      "group",
	KindBody:       "body",
	KindAtmosphere: "atmosphere",
	KindRing:       "ring",
	KindLabel:      "label",
	KindGlow:       "glow",
	KindOrbit:      "orbit",
	KindStars:      "stars",
	KindStar:       "star",
	KindLines:      "lines",
	KindCollider:   "collider",
	KindBelt:       "belt",
	KindStarfield:  "starfield",
	KindShuttle:    "shuttle",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Layers битовая маска слоев. Raycaster видит узел, только если маски пересекаются.
type Layers uint32

const (
	LayerDefault   Layers = 1 << 0
	LayerColliders Layers = 1 << 1
)

// Test проверяет пересечение масок
func (l Layers) Test(other Layers) bool {
	return l&other != 0
}

// UserData связывает узел сцены с сущностью модели
type UserData struct {
	BodyID            string
	ConstellationName string
	StarName          string
}

// Node элемент графа сцены
type Node struct {
	Name string
	Kind Kind

	Position mgl64.Vec3 // Локальная позиция относительно родителя
	Rotation mgl64.Quat
	Radius   float64 // Радиус сферы для лучевых тестов, 0 - узел не пересекается
	Inner    float64 // Внутренний радиус кольца

	Visible bool
	Layers  Layers
	Data    UserData

	Color  string
	Text   string       // Текст метки
	Points []mgl64.Vec3 // Вершины линий и точечных облаков

	parent   *Node
	children []*Node
}

// NewNode создает видимый узел на слое по умолчанию
func NewNode(name string, kind Kind) *Node {
	return &Node{
		Name:     name,
		Kind:     kind,
		Rotation: mgl64.QuatIdent(),
		Visible:  true,
		Layers:   LayerDefault,
	}
}

// Parent возвращает родителя узла
func (n *Node) Parent() *Node {
	return n.parent
}

// Children возвращает дочерние узлы
func (n *Node) Children() []*Node {
	return n.children
}

// Add прикрепляет дочерний узел, отцепляя его от прежнего родителя
func (n *Node) Add(child *Node) {
	if child.parent != nil {
		child.parent.remove(child)
	}
	child.parent = n
	n.children = append(n.children, child)
}

func (n *Node) remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// WorldRotation накапливает повороты всех предков
func (n *Node) WorldRotation() mgl64.Quat {
	if n.parent == nil {
		return n.Rotation
	}
	return n.parent.WorldRotation().Mul(n.Rotation)
}

// WorldPosition переводит локальную позицию в мировые координаты
func (n *Node) WorldPosition() mgl64.Vec3 {
	if n.parent == nil {
		return n.Position
	}
	return n.parent.WorldPosition().Add(n.parent.WorldRotation().Rotate(n.Position))
}

// AncestorsVisible сообщает, что ни один предок не скрыт
func (n *Node) AncestorsVisible() bool {
	for p := n.parent; p != nil; p = p.parent {
		if !p.Visible {
			return false
		}
	}
	return true
}

// EffectiveVisible учитывает флаг самого узла и всех предков
func (n *Node) EffectiveVisible() bool {
	return n.Visible && n.AncestorsVisible()
}

// Traverse обходит поддерево в глубину, начиная с самого узла
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}
