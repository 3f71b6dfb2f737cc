package world

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray луч с нормированным направлением
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// At возвращает точку луча на расстоянии t
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Viewpoint то, из чего можно выпустить луч: камера
type Viewpoint interface {
	Eye() mgl64.Vec3
	// Unproject переводит точку в NDC ([-1, 1]) в мировые координаты
	Unproject(ndc mgl64.Vec2) mgl64.Vec3
}

// Intersection попадание луча в узел
type Intersection struct {
	Node     *Node
	Distance float64
	Point    mgl64.Vec3
}

// Raycaster пересекает луч со сферами узлов
type Raycaster struct {
	Ray    Ray
	Layers Layers
	Near   float64
	Far    float64
}

// NewRaycaster создает raycaster на слое по умолчанию
func NewRaycaster() *Raycaster {
	return &Raycaster{
		Layers: LayerDefault,
		Far:    math.Inf(1),
	}
}

// SetFromCamera строит луч из позиции камеры через точку экрана
func (r *Raycaster) SetFromCamera(ndc mgl64.Vec2, vp Viewpoint) {
	origin := vp.Eye()
	dir := vp.Unproject(ndc).Sub(origin)
	if dir.Len() == 0 {
		dir = mgl64.Vec3{0, 0, -1}
	}
	r.Ray = Ray{Origin: origin, Direction: dir.Normalize()}
}

// IntersectNodes возвращает попадания, отсортированные по расстоянию.
// Собственный флаг Visible узла не учитывается (невидимые коллайдеры
// кликабельны), но скрытые предки исключают узел.
func (r *Raycaster) IntersectNodes(nodes []*Node) []Intersection {
	var hits []Intersection
	for _, n := range nodes {
		if n.Radius <= 0 || !n.Layers.Test(r.Layers) || !n.AncestorsVisible() {
			continue
		}
		t, ok := r.intersectSphere(n.WorldPosition(), n.Radius)
		if !ok {
			continue
		}
		hits = append(hits, Intersection{Node: n, Distance: t, Point: r.Ray.At(t)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

// intersectSphere возвращает ближайший неотрицательный параметр пересечения.
// Если начало луча внутри сферы, возвращается точка выхода.
func (r *Raycaster) intersectSphere(center mgl64.Vec3, radius float64) (float64, bool) {
	oc := r.Ray.Origin.Sub(center)
	b := oc.Dot(r.Ray.Direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}

	sq := math.Sqrt(disc)
	t0, t1 := -b-sq, -b+sq
	if t1 < 0 {
		return 0, false
	}
	t := t0
	if t < 0 {
		t = t1
	}
	if t < r.Near || t > r.Far {
		return 0, false
	}
	return t, true
}
