package ws

import (
	"log"

	"solar-system/backend/internal/world"
)

// SceneSerializer переводит граф сцены в сообщения create
type SceneSerializer struct {
	logger *log.Logger
}

// NewSceneSerializer создает новый экземпляр SceneSerializer
func NewSceneSerializer(logger *log.Logger) *SceneSerializer {
	if logger == nil {
		logger = log.Default()
	}
	return &SceneSerializer{logger: logger}
}

// CreateMessages описывает все узлы сцены, кроме корня. Родитель всегда
// идет раньше потомков, клиент может строить дерево за один проход.
func (s *SceneSerializer) CreateMessages(graph *world.Graph) []NodeMessage {
	root := graph.Root()
	serverTime := GetCurrentServerTime()

	nodes := graph.Traverse(func(n *world.Node) bool { return n != root })
	msgs := make([]NodeMessage, 0, len(nodes))
	for _, n := range nodes {
		msg := NodeMessage{
			Type:          MessageTypeCreate,
			Name:          n.Name,
			Kind:          n.Kind.String(),
			Position:      [3]float64{safeFloat(n.Position[0], 0), safeFloat(n.Position[1], 0), safeFloat(n.Position[2], 0)},
			Rotation:      [4]float64{n.Rotation.V[0], n.Rotation.V[1], n.Rotation.V[2], n.Rotation.W},
			Radius:        safeFloat(n.Radius, 0),
			Inner:         safeFloat(n.Inner, 0),
			Visible:       n.Visible,
			Layers:        uint32(n.Layers),
			Color:         n.Color,
			Text:          n.Text,
			BodyID:        n.Data.BodyID,
			Constellation: n.Data.ConstellationName,
			Star:          n.Data.StarName,
			ServerTime:    serverTime,
		}
		if p := n.Parent(); p != nil && p != root {
			msg.Parent = p.Name
		}
		if len(n.Points) > 0 {
			msg.Points = make([][3]float64, len(n.Points))
			for i, pt := range n.Points {
				msg.Points[i] = [3]float64{safeFloat(pt[0], 0), safeFloat(pt[1], 0), safeFloat(pt[2], 0)}
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// SendCreate отправляет клиенту описание всей сцены
func (s *SceneSerializer) SendCreate(wsWriter *SafeWriter, graph *world.Graph) error {
	msgs := s.CreateMessages(graph)
	for _, msg := range msgs {
		if err := wsWriter.WriteJSON(msg); err != nil {
			s.logger.Printf("[Serialize] Ошибка отправки узла %s: %v", msg.Name, err)
			return err
		}
	}
	s.logger.Printf("[Serialize] Отправлено узлов сцены: %d", len(msgs))
	return nil
}
