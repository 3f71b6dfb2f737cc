package kinematics

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"solar-system/backend/internal/core/domain/entity"
)

// BeltParams параметры генерации пояса
type BeltParams struct {
	Count       int
	InnerRadius float64
	OuterRadius float64
	MinSize     float64
	MaxSize     float64
}

var asteroidColors = []string{"#8c7853", "#a0522d", "#696969", "#808080", "#5a4d41"}

// Belt пояс астероидов между Марсом и Юпитером
type Belt struct {
	Asteroids []entity.Asteroid
}

// NewBelt генерирует пояс из детерминированного генератора
func NewBelt(p BeltParams, seed uint64) *Belt {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	belt := &Belt{Asteroids: make([]entity.Asteroid, 0, p.Count)}

	for i := 0; i < p.Count; i++ {
		a := entity.Asteroid{
			ID:            fmt.Sprintf("asteroid-%d", i),
			Angle:         rng.Float64() * 2 * math.Pi,
			OrbitRadius:   p.InnerRadius + rng.Float64()*(p.OuterRadius-p.InnerRadius),
			Height:        (rng.Float64() - 0.5) * 2,
			Size:          p.MinSize + rng.Float64()*(p.MaxSize-p.MinSize),
			RotationSpeed: (rng.Float64() - 0.5) * 0.02,
			OrbitalSpeed:  0.001 + rng.Float64()*0.001,
			Rotation: mgl64.Vec3{
				rng.Float64() * 2 * math.Pi,
				rng.Float64() * 2 * math.Pi,
				rng.Float64() * 2 * math.Pi,
			},
			Color: asteroidColors[rng.IntN(len(asteroidColors))],
		}
		belt.Asteroids = append(belt.Asteroids, a)
	}
	return belt
}

// Step продвигает орбиты и кувыркание астероидов
func (b *Belt) Step(dt float64) {
	for i := range b.Asteroids {
		a := &b.Asteroids[i]
		a.Rotation[0] += a.RotationSpeed * dt
		a.Rotation[1] += a.RotationSpeed * dt * 0.7
		a.Rotation[2] += a.RotationSpeed * dt * 0.5
		a.Angle += a.OrbitalSpeed * dt
	}
}

// GenerateStarfield создает точки фона в кубе со стороной extent
func GenerateStarfield(count int, extent float64, seed uint64) []mgl64.Vec3 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	points := make([]mgl64.Vec3, count)
	for i := range points {
		points[i] = mgl64.Vec3{
			(rng.Float64() - 0.5) * extent,
			(rng.Float64() - 0.5) * extent,
			(rng.Float64() - 0.5) * extent,
		}
	}
	return points
}
