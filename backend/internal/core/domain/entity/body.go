package entity

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyClass определяет класс тела, по нему выбирается дистанция камеры
type BodyClass string

// Классы тел
const (
	ClassSun         BodyClass = "sun"
	ClassTerrestrial BodyClass = "terrestrial"
	ClassGasGiant    BodyClass = "gas_giant"
	ClassIceGiant    BodyClass = "ice_giant"
	ClassMoon        BodyClass = "moon"
)

// Ring описывает кольцо планеты (Сатурн, Уран)
type Ring struct {
	InnerRadius float64
	OuterRadius float64
	Color       string
}

// CelestialBody представляет Солнце, планету или спутник
type CelestialBody struct {
	ID    string
	Name  string
	Class BodyClass

	Radius        float64 // Визуальный размер
	OrbitRadius   float64
	OrbitSpeed    float64 // рад/с
	RotationSpeed float64 // рад/с
	AxialTilt     float64 // рад

	// Фаза орбиты на эпоху J2000 и период, используются только при засеве фаз
	MeanLongitude float64 // рад
	PeriodDays    float64

	OrbitAngle    float64 // Растет неограниченно, тригонометрия сама сворачивает угол
	RotationAngle float64

	// ParentID пуст у тел, вращающихся вокруг начала координат
	ParentID string

	// Position производная величина, пересчитывается каждый тик из OrbitAngle
	Position mgl64.Vec3

	Color      string
	Atmosphere string // Цвет атмосферы, пусто если атмосферы нет
	Ring       *Ring
}

// IsStationary сообщает, что тело не движется по орбите (Солнце)
func (b *CelestialBody) IsStationary() bool {
	return b.OrbitRadius == 0
}

// IsSatellite сообщает, что центр орбиты тела - другое тело
func (b *CelestialBody) IsSatellite() bool {
	return b.ParentID != ""
}

// OrbitOffset возвращает смещение тела относительно центра его орбиты
func (b *CelestialBody) OrbitOffset() mgl64.Vec3 {
	if b.IsStationary() {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{
		math.Cos(b.OrbitAngle) * b.OrbitRadius,
		0,
		math.Sin(b.OrbitAngle) * b.OrbitRadius,
	}
}

// Orientation возвращает ориентацию меша: наклон оси, затем собственное вращение.
// На позицию не влияет.
func (b *CelestialBody) Orientation() mgl64.Quat {
	tilt := mgl64.QuatRotate(b.AxialTilt, mgl64.Vec3{0, 0, 1})
	spin := mgl64.QuatRotate(b.RotationAngle, mgl64.Vec3{0, 1, 0})
	return tilt.Mul(spin).Normalize()
}
