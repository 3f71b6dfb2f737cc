package session

import (
	"github.com/go-gl/mathgl/mgl64"

	"solar-system/backend/internal/world"
)

// BodyState позиция и ориентация тела в мировых координатах
type BodyState struct {
	ID       string     `json:"id"`
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"` // x, y, z, w
}

// CameraState поза камеры
type CameraState struct {
	Position  [3]float64 `json:"position"`
	Target    [3]float64 `json:"target"`
	FOV       float64    `json:"fov"`
	Animating bool       `json:"animating"`
}

// FocusState выделенные сущности
type FocusState struct {
	Body          string `json:"body,omitempty"`
	Constellation string `json:"constellation,omitempty"`
}

// ShuttleState состояние шаттла
type ShuttleState struct {
	Active   bool       `json:"active"`
	Visible  bool       `json:"visible"`
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"`
	Speed    float64    `json:"speed"`
}

// Snapshot состояние сцены, которое клиент рисует за один кадр
type Snapshot struct {
	Bodies []BodyState `json:"bodies"`

	// Плоский массив: x, y, z, rx, ry, rz на каждый астероид
	Asteroids []float64 `json:"asteroids,omitempty"`

	Camera     CameraState     `json:"camera"`
	Focus      FocusState      `json:"focus"`
	Visibility map[string]bool `json:"visibility,omitempty"`
	Shuttle    ShuttleState    `json:"shuttle"`
	TimeScale  float64         `json:"timeScale"`
	Cursor     string          `json:"cursor"`
}

// decorated типы узлов, чья видимость меняется во время работы
var decorated = map[world.Kind]bool{
	world.KindLabel: true,
	world.KindGlow:  true,
	world.KindOrbit: true,
	world.KindLines: true,
}

// Snapshot снимает состояние. Астероиды и видимость включаются по запросу,
// так как меняются реже или занимают много места.
func (s *Session) Snapshot(withAsteroids, withVisibility bool) Snapshot {
	bodies := s.updater.Bodies()
	snap := Snapshot{
		Bodies: make([]BodyState, 0, len(bodies)),
		Camera: CameraState{
			Position:  vec(s.camera.Position),
			Target:    vec(s.camera.Target),
			FOV:       s.camera.FOV,
			Animating: s.engine.Active(),
		},
		Shuttle: ShuttleState{
			Active:   s.shuttleMode,
			Visible:  s.shuttle.Visible,
			Position: vec(s.shuttle.Position),
			Rotation: quat(s.shuttle.Orientation),
			Speed:    s.shuttle.Speed,
		},
		TimeScale: s.timeScale,
		Cursor:    string(s.cursor),
	}

	for _, b := range bodies {
		snap.Bodies = append(snap.Bodies, BodyState{
			ID:       b.ID,
			Position: vec(b.Position),
			Rotation: quat(b.Orientation()),
		})
	}

	snap.Focus.Body, _ = s.bodyFocus.Active()
	snap.Focus.Constellation, _ = s.constellationFocus.Active()

	if withAsteroids {
		snap.Asteroids = make([]float64, 0, len(s.belt.Asteroids)*6)
		for i := range s.belt.Asteroids {
			a := &s.belt.Asteroids[i]
			p := a.Position()
			snap.Asteroids = append(snap.Asteroids, p[0], p[1], p[2], a.Rotation[0], a.Rotation[1], a.Rotation[2])
		}
	}

	if withVisibility {
		snap.Visibility = s.Visibility()
	}
	return snap
}

// Visibility возвращает флаги видимости декораций и групп сущностей по имени узла
func (s *Session) Visibility() map[string]bool {
	vis := make(map[string]bool)
	for _, n := range s.scene.Graph.Traverse(func(n *world.Node) bool {
		if decorated[n.Kind] {
			return true
		}
		return n.Kind == world.KindGroup && n.Parent() != nil
	}) {
		vis[n.Name] = n.Visible
	}
	vis[s.scene.Shuttle.Name] = s.scene.Shuttle.Visible
	return vis
}

func vec(v mgl64.Vec3) [3]float64 {
	return [3]float64{v[0], v[1], v[2]}
}

func quat(q mgl64.Quat) [4]float64 {
	return [4]float64{q.V[0], q.V[1], q.V[2], q.W}
}
