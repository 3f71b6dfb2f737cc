package kinematics

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"

	"solar-system/backend/internal/core/domain/entity"
)

// Ошибки построения порядка обновления
var (
	ErrUnknownParent = errors.New("unknown parent body")
	ErrCycle         = errors.New("parent cycle")
)

// Advance продвигает углы тела на dt секунд и пересчитывает позицию
// относительно центра орбиты. Отрицательный dt двигает тело назад.
func Advance(b *entity.CelestialBody, center mgl64.Vec3, dt float64) {
	b.OrbitAngle += b.OrbitSpeed * dt
	b.RotationAngle += b.RotationSpeed * dt
	b.Position = center.Add(b.OrbitOffset())
}

// Updater обновляет тела так, что родитель всегда пересчитан раньше спутника
type Updater struct {
	order   []*entity.CelestialBody
	parents []int // Индекс родителя в order, -1 для тел вокруг начала координат
	byID    map[string]*entity.CelestialBody
}

// NewUpdater строит порядок обновления топологической сортировкой.
// При равных условиях сохраняется порядок входного среза.
func NewUpdater(bodies []*entity.CelestialBody) (*Updater, error) {
	byID := make(map[string]*entity.CelestialBody, len(bodies))
	for _, b := range bodies {
		if _, dup := byID[b.ID]; dup {
			return nil, fmt.Errorf("duplicate body %s", b.ID)
		}
		byID[b.ID] = b
	}

	for _, b := range bodies {
		if b.IsSatellite() {
			if _, ok := byID[b.ParentID]; !ok {
				return nil, fmt.Errorf("%w %q for %s", ErrUnknownParent, b.ParentID, b.ID)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(bodies))
	order := make([]*entity.CelestialBody, 0, len(bodies))

	var visit func(b *entity.CelestialBody) error
	visit = func(b *entity.CelestialBody) error {
		switch state[b.ID] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w at %s", ErrCycle, b.ID)
		}
		state[b.ID] = visiting
		if b.IsSatellite() {
			if err := visit(byID[b.ParentID]); err != nil {
				return err
			}
		}
		state[b.ID] = done
		order = append(order, b)
		return nil
	}

	for _, b := range bodies {
		if err := visit(b); err != nil {
			return nil, err
		}
	}

	index := make(map[string]int, len(order))
	for i, b := range order {
		index[b.ID] = i
	}
	parents := make([]int, len(order))
	for i, b := range order {
		parents[i] = -1
		if b.IsSatellite() {
			parents[i] = index[b.ParentID]
		}
	}

	u := &Updater{order: order, parents: parents, byID: byID}
	u.Step(0)
	return u, nil
}

// Step продвигает все тела на dt секунд
func (u *Updater) Step(dt float64) {
	for i, b := range u.order {
		var center mgl64.Vec3
		if p := u.parents[i]; p >= 0 {
			center = u.order[p].Position
		}
		Advance(b, center, dt)
	}
}

// SeedPhases выставляет углы орбит на заданную эпоху по средней долготе J2000.
// Тела без периода сохраняют текущий угол.
func (u *Updater) SeedPhases(epoch time.Time) {
	days := julian.TimeToJD(epoch) - base.J2000
	for _, b := range u.order {
		if b.PeriodDays <= 0 {
			continue
		}
		b.OrbitAngle = b.MeanLongitude + 2*math.Pi*days/b.PeriodDays
	}
	u.Step(0)
}

// Bodies возвращает тела в порядке обновления
func (u *Updater) Bodies() []*entity.CelestialBody {
	return u.order
}

// Body ищет тело по id
func (u *Updater) Body(id string) (*entity.CelestialBody, bool) {
	b, ok := u.byID[id]
	return b, ok
}
