package entity

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gonum/floats"
)

// CelestialRadius радиус небесной сферы, на которой лежат созвездия
const CelestialRadius = 300.0

// colliderScale доля от наибольшего размера bounding box созвездия
const colliderScale = 0.8

// RaDecToCartesian переводит прямое восхождение (часы) и склонение (градусы)
// в точку на сфере заданного радиуса
func RaDecToCartesian(raHours, decDeg, radius float64) mgl64.Vec3 {
	ra := mgl64.DegToRad(raHours * 15)
	dec := mgl64.DegToRad(decDeg)

	return mgl64.Vec3{
		radius * math.Cos(dec) * math.Cos(ra),
		radius * math.Sin(dec),
		radius * math.Cos(dec) * math.Sin(ra),
	}
}

// Star звезда созвездия с фиксированной позицией
type Star struct {
	Name       string
	Brightness float64 // 0..1
	Position   mgl64.Vec3
}

// Constellation статичный набор звезд и связей между ними
type Constellation struct {
	Name        string
	Symbol      string
	Stars       []Star
	Connections [][2]int // Индексы в Stars
}

// Validate проверяет, что созвездие непустое и связи ссылаются на существующие звезды
func (c *Constellation) Validate() error {
	if c.Name == "" {
		return errors.New("constellation without name")
	}
	if len(c.Stars) == 0 {
		return fmt.Errorf("constellation %s has no stars", c.Name)
	}
	for i, conn := range c.Connections {
		for _, idx := range conn {
			if idx < 0 || idx >= len(c.Stars) {
				return fmt.Errorf("constellation %s: connection %d references star %d out of %d",
					c.Name, i, idx, len(c.Stars))
			}
		}
	}
	return nil
}

// Center возвращает среднее арифметическое позиций звезд
func (c *Constellation) Center() mgl64.Vec3 {
	if len(c.Stars) == 0 {
		return mgl64.Vec3{}
	}

	xs := make([]float64, len(c.Stars))
	ys := make([]float64, len(c.Stars))
	zs := make([]float64, len(c.Stars))
	for i, s := range c.Stars {
		xs[i], ys[i], zs[i] = s.Position.X(), s.Position.Y(), s.Position.Z()
	}

	n := float64(len(c.Stars))
	return mgl64.Vec3{floats.Sum(xs) / n, floats.Sum(ys) / n, floats.Sum(zs) / n}
}

// Collider возвращает центр и радиус невидимой сферы для выбора разреженного созвездия
func (c *Constellation) Collider() (mgl64.Vec3, float64) {
	if len(c.Stars) == 0 {
		return mgl64.Vec3{}, 0
	}

	lo := c.Stars[0].Position
	hi := c.Stars[0].Position
	for _, s := range c.Stars[1:] {
		for axis := 0; axis < 3; axis++ {
			lo[axis] = math.Min(lo[axis], s.Position[axis])
			hi[axis] = math.Max(hi[axis], s.Position[axis])
		}
	}

	size := hi.Sub(lo)
	center := lo.Add(hi).Mul(0.5)
	return center, floats.Max(size[:]) * colliderScale
}

// StarColor цвет звезды по яркости
func StarColor(brightness float64) string {
	switch {
	case brightness > 0.9:
		return "#ffffff"
	case brightness > 0.7:
		return "#ffffaa"
	case brightness > 0.5:
		return "#ffddaa"
	default:
		return "#ffccaa"
	}
}
