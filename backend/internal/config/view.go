package config

import (
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// CameraConfig настройки камеры и анимации фокуса
type CameraConfig struct {
	// Поле зрения по вертикали в градусах
	FOV  float64
	Near float64
	Far  float64

	// Домашняя позиция, в которую камера возвращается по сбросу
	HomePosition mgl64.Vec3
	HomeTarget   mgl64.Vec3

	// Направление, с которого камера смотрит на выбранную цель
	FramingDirection mgl64.Vec3

	AnimationDuration time.Duration
}

// TimeConfig настройки ускорения времени
type TimeConfig struct {
	DefaultScale float64
	MaxScale     float64

	// Ограничение на один шаг симуляции после долгой паузы
	MaxStep time.Duration
}

// ShuttleConfig настройки шаттла
type ShuttleConfig struct {
	MaxSpeed     float64
	Acceleration float64
	Deceleration float64
	TurnRate     float64 // рад/с
	RollRate     float64 // рад/с

	// Смещение камеры преследования в локальных координатах шаттла
	ChaseOffset mgl64.Vec3
	LookAhead   float64
}

// ViewConfig объединяет все настройки отображения
type ViewConfig struct {
	Camera  CameraConfig
	Time    TimeConfig
	Shuttle ShuttleConfig
}

var (
	viewConfig  ViewConfig
	configMutex sync.RWMutex
)

// Инициализация конфигурации по умолчанию
func init() {
	viewConfig = DefaultViewConfig()
}

// DefaultViewConfig возвращает значения по умолчанию
func DefaultViewConfig() ViewConfig {
	return ViewConfig{
		Camera: CameraConfig{
			FOV:  75,
			Near: 0.1,
			Far:  3000,

			HomePosition: mgl64.Vec3{0, 10, 30},
			HomeTarget:   mgl64.Vec3{0, 0, 0},

			// Вектор намеренно не нормирован
			FramingDirection: mgl64.Vec3{0.7, 0.5, 0.7},

			AnimationDuration: 2000 * time.Millisecond,
		},

		Time: TimeConfig{
			DefaultScale: 1.0,
			MaxScale:     5.0,
			MaxStep:      250 * time.Millisecond,
		},

		Shuttle: ShuttleConfig{
			MaxSpeed:     2.0,
			Acceleration: 1.0,
			Deceleration: 2.0,
			TurnRate:     1.2,
			RollRate:     1.5,

			ChaseOffset: mgl64.Vec3{0, 0.6, -2.5},
			LookAhead:   5,
		},
	}
}

// GetViewConfig возвращает текущую конфигурацию отображения
func GetViewConfig() ViewConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return viewConfig
}

// SetViewConfig устанавливает новую конфигурацию отображения
func SetViewConfig(config ViewConfig) {
	configMutex.Lock()
	defer configMutex.Unlock()
	viewConfig = config
}

// GetCameraConfig возвращает только конфигурацию камеры
func GetCameraConfig() CameraConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return viewConfig.Camera
}

// GetTimeConfig возвращает только конфигурацию времени
func GetTimeConfig() TimeConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return viewConfig.Time
}

// GetShuttleConfig возвращает только конфигурацию шаттла
func GetShuttleConfig() ShuttleConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return viewConfig.Shuttle
}
