package entity

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Asteroid объект пояса астероидов. В отличие от планет лежит не в плоскости y = 0.
type Asteroid struct {
	ID            string
	Angle         float64
	OrbitRadius   float64
	Height        float64
	Size          float64
	RotationSpeed float64
	OrbitalSpeed  float64
	Rotation      mgl64.Vec3 // Углы Эйлера
	Color         string
}

// Position вычисляет позицию астероида из текущего угла
func (a *Asteroid) Position() mgl64.Vec3 {
	return mgl64.Vec3{
		math.Cos(a.Angle) * a.OrbitRadius,
		a.Height,
		math.Sin(a.Angle) * a.OrbitRadius,
	}
}
