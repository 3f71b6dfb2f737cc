package camera

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// StandoffTable дистанция камеры до цели по классу сущности
type StandoffTable map[string]float64

// NewStandoffTable копирует таблицу и проверяет, что все требуемые классы есть
func NewStandoffTable(table map[string]float64, required ...string) (StandoffTable, error) {
	t := make(StandoffTable, len(table))
	for k, v := range table {
		t[k] = v
	}

	var missing []string
	for _, class := range required {
		if _, ok := t[class]; !ok {
			missing = append(missing, class)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("no standoff distance for classes %v", missing)
	}
	return t, nil
}

// Distance возвращает дистанцию для класса
func (t StandoffTable) Distance(class string) (float64, bool) {
	d, ok := t[class]
	return d, ok
}

// EaseOutCubic быстро стартует и плавно тормозит. Монотонна на [0, 1].
func EaseOutCubic(p float64) float64 {
	q := 1 - p
	return 1 - q*q*q
}

// FramingPosition точка, из которой камера смотрит на цель
func FramingPosition(target mgl64.Vec3, standoff float64, direction mgl64.Vec3) mgl64.Vec3 {
	return target.Add(direction.Mul(standoff))
}

// Animation перелет камеры из одной позы в другую
type Animation struct {
	StartPosition mgl64.Vec3
	StartTarget   mgl64.Vec3
	EndPosition   mgl64.Vec3
	EndTarget     mgl64.Vec3

	Start    time.Time
	Duration time.Duration
}

// Progress возвращает долю пройденного времени в [0, 1]
func (a Animation) Progress(now time.Time) float64 {
	if a.Duration <= 0 {
		return 1
	}
	p := float64(now.Sub(a.Start)) / float64(a.Duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Pose возвращает позицию и цель камеры на момент now
func (a Animation) Pose(now time.Time) (mgl64.Vec3, mgl64.Vec3) {
	p := a.Progress(now)
	if p >= 1 {
		return a.EndPosition, a.EndTarget
	}
	e := EaseOutCubic(p)
	return lerp(a.StartPosition, a.EndPosition, e), lerp(a.StartTarget, a.EndTarget, e)
}

func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
