package camera

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"solar-system/backend/internal/config"
)

// Engine анимирует камеру к выбранной цели. Одновременно живет одна анимация.
type Engine struct {
	camera *Camera
	cfg    config.CameraConfig
	anim   *Animation
}

// NewEngine создает движок для камеры
func NewEngine(cam *Camera, cfg config.CameraConfig) *Engine {
	return &Engine{camera: cam, cfg: cfg}
}

// Camera возвращает управляемую камеру
func (e *Engine) Camera() *Camera {
	return e.camera
}

// FocusOn запускает перелет к цели с заданной дистанцией
func (e *Engine) FocusOn(target mgl64.Vec3, standoff float64, now time.Time) {
	e.AnimateTo(FramingPosition(target, standoff, e.cfg.FramingDirection), target, now)
}

// AnimateTo запускает перелет из текущей позы. Прежняя анимация заменяется,
// поэтому новая стартует с того места, где камера находится сейчас.
func (e *Engine) AnimateTo(position, lookAt mgl64.Vec3, now time.Time) {
	e.anim = &Animation{
		StartPosition: e.camera.Position,
		StartTarget:   e.camera.Target,
		EndPosition:   position,
		EndTarget:     lookAt,
		Start:         now,
		Duration:      e.cfg.AnimationDuration,
	}
}

// Update двигает камеру по текущей анимации. Возвращает true, если камера сдвинулась.
func (e *Engine) Update(now time.Time) bool {
	if e.anim == nil {
		return false
	}

	e.camera.Position, e.camera.Target = e.anim.Pose(now)
	if e.anim.Progress(now) >= 1 {
		e.anim = nil
	}
	return true
}

// Active сообщает, идет ли анимация
func (e *Engine) Active() bool {
	return e.anim != nil
}

// Animation возвращает копию текущей анимации
func (e *Engine) Animation() (Animation, bool) {
	if e.anim == nil {
		return Animation{}, false
	}
	return *e.anim, true
}

// Cancel прерывает анимацию, камера остается там, где была
func (e *Engine) Cancel() {
	e.anim = nil
}

// Reset возвращает камеру в домашнюю позицию
func (e *Engine) Reset(now time.Time) {
	e.AnimateTo(e.cfg.HomePosition, e.cfg.HomeTarget, now)
}
