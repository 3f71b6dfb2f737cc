package picking

import (
	"github.com/go-gl/mathgl/mgl64"

	"solar-system/backend/internal/world"
)

// Cursor подсказка курсора для клиента
type Cursor string

const (
	CursorDefault Cursor = "default"
	CursorPointer Cursor = "pointer"
)

// Фильтры кандидатов

// BodyMeshes отбирает только меши тел: без колец, атмосфер, меток и подсветки
func BodyMeshes(n *world.Node) bool {
	return n.Kind == world.KindBody && n.Data.BodyID != ""
}

// ConstellationStars отбирает звезды созвездий
func ConstellationStars(n *world.Node) bool {
	return n.Kind == world.KindStar && n.Data.ConstellationName != ""
}

// ConstellationColliders отбирает невидимые сферы созвездий
func ConstellationColliders(n *world.Node) bool {
	return n.Kind == world.KindCollider && n.Data.ConstellationName != ""
}

// Pick возвращает ближайшее попадание луча из точки экрана
func Pick(ndc mgl64.Vec2, vp world.Viewpoint, candidates []*world.Node, layers world.Layers) (world.Intersection, bool) {
	rc := world.NewRaycaster()
	rc.Layers = layers
	rc.SetFromCamera(ndc, vp)

	hits := rc.IntersectNodes(candidates)
	if len(hits) == 0 {
		return world.Intersection{}, false
	}
	return hits[0], true
}

// Resolver превращает клики в id сущностей. Состояние выделения не меняет.
type Resolver struct {
	graph *world.Graph
}

// NewResolver создает резолвер поверх графа сцены
func NewResolver(graph *world.Graph) *Resolver {
	return &Resolver{graph: graph}
}

// Click ищет тело под курсором
func (r *Resolver) Click(ndc mgl64.Vec2, vp world.Viewpoint) (string, bool) {
	hit, ok := Pick(ndc, vp, r.graph.Traverse(BodyMeshes), world.LayerDefault)
	if !ok {
		return "", false
	}
	return hit.Node.Data.BodyID, true
}

// DoubleClick ищет созвездие: сначала по звездам, затем по коллайдерам
func (r *Resolver) DoubleClick(ndc mgl64.Vec2, vp world.Viewpoint) (string, bool) {
	if hit, ok := Pick(ndc, vp, r.graph.Traverse(ConstellationStars), world.LayerDefault); ok {
		return hit.Node.Data.ConstellationName, true
	}
	if hit, ok := Pick(ndc, vp, r.graph.Traverse(ConstellationColliders), world.LayerColliders); ok {
		return hit.Node.Data.ConstellationName, true
	}
	return "", false
}

// Hover проверяет тела и звезды, коллайдеры не учитываются
func (r *Resolver) Hover(ndc mgl64.Vec2, vp world.Viewpoint) Cursor {
	if _, ok := Pick(ndc, vp, r.graph.Traverse(BodyMeshes), world.LayerDefault); ok {
		return CursorPointer
	}
	if _, ok := Pick(ndc, vp, r.graph.Traverse(ConstellationStars), world.LayerDefault); ok {
		return CursorPointer
	}
	return CursorDefault
}
