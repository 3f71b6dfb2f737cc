package shuttle

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"solar-system/backend/internal/config"
)

// Control органы управления шаттлом
type Control string

const (
	Up             Control = "up"
	Down           Control = "down"
	Left           Control = "left"
	Right          Control = "right"
	RollLeft       Control = "rollLeft"
	RollRight      Control = "rollRight"
	Thrust         Control = "thrust"
	DecreaseThrust Control = "decreaseThrust"
)

var keyControls = map[string]Control{
	"w": Up,
	"s": Down,
	"a": Left,
	"d": Right,
	"q": RollLeft,
	"e": RollRight,
}

var codeControls = map[string]Control{
	"ShiftLeft":    Thrust,
	"ShiftRight":   Thrust,
	"ControlLeft":  DecreaseThrust,
	"ControlRight": DecreaseThrust,
}

// ControlForKey сопоставляет клавишу органу управления.
// key сравнивается без учета регистра, code - физическая клавиша браузера.
func ControlForKey(key, code string) (Control, bool) {
	if c, ok := codeControls[code]; ok {
		return c, true
	}
	c, ok := keyControls[strings.ToLower(key)]
	return c, ok
}

// Локальные оси модели
var (
	axisForward = mgl64.Vec3{0, 0, 1}
	axisUp      = mgl64.Vec3{0, 1, 0}
)

// Shuttle кинематический шаттл, которым управляет зритель
type Shuttle struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Speed       float64
	Visible     bool

	controls map[Control]bool
	cfg      config.ShuttleConfig
}

// New создает скрытый неподвижный шаттл, повернутый на 90° вокруг вертикали
func New(cfg config.ShuttleConfig) *Shuttle {
	return &Shuttle{
		Position:    mgl64.Vec3{5, 5, 5},
		Orientation: mgl64.QuatRotate(math.Pi/2, axisUp),
		controls:    make(map[Control]bool),
		cfg:         cfg,
	}
}

// SetControl нажимает или отпускает орган управления
func (s *Shuttle) SetControl(c Control, active bool) {
	if active {
		s.controls[c] = true
		return
	}
	delete(s.controls, c)
}

// ClearControls отпускает все органы управления
func (s *Shuttle) ClearControls() {
	for c := range s.controls {
		delete(s.controls, c)
	}
}

// Active сообщает, нажат ли орган управления
func (s *Shuttle) Active(c Control) bool {
	return s.controls[c]
}

func (s *Shuttle) axis(positive, negative Control) float64 {
	v := 0.0
	if s.controls[positive] {
		v++
	}
	if s.controls[negative] {
		v--
	}
	return v
}

// Update интегрирует ориентацию, скорость и позицию за dt секунд
func (s *Shuttle) Update(dt float64) {
	if dt <= 0 {
		return
	}

	// Положительный поворот вокруг локальной X опускает нос
	pitch := s.axis(Down, Up) * s.cfg.TurnRate * dt
	yaw := s.axis(Left, Right) * s.cfg.TurnRate * dt
	roll := s.axis(RollRight, RollLeft) * s.cfg.RollRate * dt

	if pitch != 0 || yaw != 0 || roll != 0 {
		delta := mgl64.QuatRotate(pitch, mgl64.Vec3{1, 0, 0}).
			Mul(mgl64.QuatRotate(yaw, axisUp)).
			Mul(mgl64.QuatRotate(roll, axisForward))
		s.Orientation = s.Orientation.Mul(delta).Normalize()
	}

	if s.controls[Thrust] {
		s.Speed += s.cfg.Acceleration * dt
	}
	if s.controls[DecreaseThrust] {
		s.Speed -= s.cfg.Deceleration * dt
	}
	s.Speed = mgl64.Clamp(s.Speed, 0, s.cfg.MaxSpeed)

	s.Position = s.Position.Add(s.Forward().Mul(s.Speed * dt))
}

// Forward направление носа в мировых координатах
func (s *Shuttle) Forward() mgl64.Vec3 {
	return s.Orientation.Rotate(axisForward)
}

// CameraPosition точка камеры преследования: сзади и выше
func (s *Shuttle) CameraPosition() mgl64.Vec3 {
	return s.Position.Add(s.Orientation.Rotate(s.cfg.ChaseOffset))
}

// CameraTarget точка впереди шаттла, куда смотрит камера
func (s *Shuttle) CameraTarget() mgl64.Vec3 {
	return s.Position.Add(s.Forward().Mul(s.cfg.LookAhead))
}
