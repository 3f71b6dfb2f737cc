package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"solar-system/backend/internal/config"
)

// Camera перспективная камера, смотрящая из Position в Target
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3

	FOV    float64 // градусы, по вертикали
	Aspect float64
	Near   float64
	Far    float64
}

// New создает камеру в домашней позиции
func New(cfg config.CameraConfig) *Camera {
	return &Camera{
		Position: cfg.HomePosition,
		Target:   cfg.HomeTarget,
		Up:       mgl64.Vec3{0, 1, 0},
		FOV:      cfg.FOV,
		Aspect:   1,
		Near:     cfg.Near,
		Far:      cfg.Far,
	}
}

// Eye возвращает позицию камеры
func (c *Camera) Eye() mgl64.Vec3 {
	return c.Position
}

// SetAspect пересчитывает соотношение сторон по размеру окна.
// Нулевые размеры игнорируются.
func (c *Camera) SetAspect(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = width / height
}

// View возвращает матрицу вида
func (c *Camera) View() mgl64.Mat4 {
	target := c.Target
	if target.Sub(c.Position).Len() < 1e-12 {
		target = c.Position.Add(mgl64.Vec3{0, 0, -1})
	}

	up := c.Up
	dir := target.Sub(c.Position).Normalize()
	if math.Abs(dir.Dot(up.Normalize())) > 1-1e-9 {
		up = mgl64.Vec3{0, 0, -1}
	}
	return mgl64.LookAtV(c.Position, target, up)
}

// Projection возвращает матрицу перспективной проекции
func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// Unproject переводит точку экрана в NDC в мировые координаты на середине глубины
func (c *Camera) Unproject(ndc mgl64.Vec2) mgl64.Vec3 {
	inv := c.Projection().Mul4(c.View()).Inv()
	v := inv.Mul4x1(mgl64.Vec4{ndc.X(), ndc.Y(), 0.5, 1})
	if v.W() == 0 {
		return c.Target
	}
	return v.Vec3().Mul(1 / v.W())
}

// Direction возвращает нормированное направление взгляда
func (c *Camera) Direction() mgl64.Vec3 {
	d := c.Target.Sub(c.Position)
	if d.Len() == 0 {
		return mgl64.Vec3{0, 0, -1}
	}
	return d.Normalize()
}
