package game

import (
	"errors"
	"log"
	"time"

	"solar-system/backend/internal/config"
	"solar-system/backend/internal/picking"
	"solar-system/backend/internal/session"
)

// Clock источник текущего времени для систем
type Clock func() time.Time

func clockOrNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// InputSystem применяет накопленные события зрителя
type InputSystem struct {
	name     string
	priority int
	session  *session.Session
	clock    Clock
}

// NewInputSystem создает систему обработки ввода
func NewInputSystem(sess *session.Session, clock Clock) *InputSystem {
	return &InputSystem{
		name:     "InputSystem",
		priority: 0, // Ввод применяется до любых обновлений
		session:  sess,
		clock:    clockOrNow(clock),
	}
}

// Update разбирает очередь событий сессии
func (is *InputSystem) Update(deltaTime time.Duration) error {
	is.session.Drain(is.clock())
	return nil
}

// GetName возвращает имя системы
func (is *InputSystem) GetName() string {
	return is.name
}

// GetPriority возвращает приоритет системы
func (is *InputSystem) GetPriority() int {
	return is.priority
}

// KinematicsSystem продвигает орбиты, вращение и пояс астероидов
type KinematicsSystem struct {
	name     string
	priority int
	session  *session.Session
}

// NewKinematicsSystem создает систему кинематики
func NewKinematicsSystem(sess *session.Session) *KinematicsSystem {
	return &KinematicsSystem{
		name:     "KinematicsSystem",
		priority: 5,
		session:  sess,
	}
}

// Update ограничивает шаг и двигает тела
func (ks *KinematicsSystem) Update(deltaTime time.Duration) error {
	if deltaTime < 0 {
		deltaTime = 0
	}
	if maxStep := config.GetTimeConfig().MaxStep; maxStep > 0 && deltaTime > maxStep {
		deltaTime = maxStep
	}
	ks.session.StepKinematics(deltaTime)
	return nil
}

// GetName возвращает имя системы
func (ks *KinematicsSystem) GetName() string {
	return ks.name
}

// GetPriority возвращает приоритет системы
func (ks *KinematicsSystem) GetPriority() int {
	return ks.priority
}

// CameraSystem ведет анимацию фокуса или камеру шаттла
type CameraSystem struct {
	name     string
	priority int
	session  *session.Session
	clock    Clock
}

// NewCameraSystem создает систему камеры
func NewCameraSystem(sess *session.Session, clock Clock) *CameraSystem {
	return &CameraSystem{
		name:     "CameraSystem",
		priority: 10,
		session:  sess,
		clock:    clockOrNow(clock),
	}
}

// Update двигает камеру
func (cs *CameraSystem) Update(deltaTime time.Duration) error {
	if maxStep := config.GetTimeConfig().MaxStep; maxStep > 0 && deltaTime > maxStep {
		deltaTime = maxStep
	}
	cs.session.StepCamera(deltaTime, cs.clock())
	return nil
}

// GetName возвращает имя системы
func (cs *CameraSystem) GetName() string {
	return cs.name
}

// GetPriority возвращает приоритет системы
func (cs *CameraSystem) GetPriority() int {
	return cs.priority
}

// Broadcaster получатель состояния сцены (WebSocket соединение)
type Broadcaster interface {
	SendSnapshot(tick uint64, snap session.Snapshot) error
	SendFocus(focus session.FocusState) error
	SendCursor(cursor picking.Cursor) error
}

// BroadcastSystem отправляет клиенту состояние после всех обновлений
type BroadcastSystem struct {
	name        string
	priority    int
	session     *session.Session
	broadcaster Broadcaster
	logger      *log.Logger

	// Астероиды и полная видимость отправляются раз в asteroidEvery тиков
	asteroidEvery uint64
	tick          uint64
}

// NewBroadcastSystem создает систему рассылки
func NewBroadcastSystem(sess *session.Session, broadcaster Broadcaster, asteroidEvery int, logger *log.Logger) *BroadcastSystem {
	if logger == nil {
		logger = log.Default()
	}
	if asteroidEvery <= 0 {
		asteroidEvery = 1
	}
	return &BroadcastSystem{
		name:          "BroadcastSystem",
		priority:      20, // Отправка в конце тика
		session:       sess,
		broadcaster:   broadcaster,
		logger:        logger,
		asteroidEvery: uint64(asteroidEvery),
	}
}

// Update снимает состояние и отправляет его
func (bs *BroadcastSystem) Update(deltaTime time.Duration) error {
	bs.tick++
	changes := bs.session.TakeChanges()

	periodic := bs.tick == 1 || bs.tick%bs.asteroidEvery == 0
	snap := bs.session.Snapshot(periodic, periodic || changes.Display || changes.Focus)

	var errs []error
	if changes.Focus {
		if err := bs.broadcaster.SendFocus(snap.Focus); err != nil {
			errs = append(errs, err)
		}
	}
	if changes.Cursor {
		if err := bs.broadcaster.SendCursor(bs.session.Cursor()); err != nil {
			errs = append(errs, err)
		}
	}
	if err := bs.broadcaster.SendSnapshot(bs.tick, snap); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// GetName возвращает имя системы
func (bs *BroadcastSystem) GetName() string {
	return bs.name
}

// GetPriority возвращает приоритет системы
func (bs *BroadcastSystem) GetPriority() int {
	return bs.priority
}

// StatsSystem периодически пишет в лог метрики цикла
type StatsSystem struct {
	name       string
	priority   int
	gameTicker *GameTicker
	sessionID  string
	logger     *log.Logger

	lastMetricsLog  time.Time
	metricsInterval time.Duration
}

// NewStatsSystem создает систему логирования метрик
func NewStatsSystem(gameTicker *GameTicker, sessionID string, logger *log.Logger) *StatsSystem {
	if logger == nil {
		logger = log.Default()
	}
	return &StatsSystem{
		name:            "StatsSystem",
		priority:        200, // Метрики в самом конце
		gameTicker:      gameTicker,
		sessionID:       sessionID,
		logger:          logger,
		lastMetricsLog:  time.Now(),
		metricsInterval: 30 * time.Second,
	}
}

// Update логирует TPS раз в metricsInterval
func (ss *StatsSystem) Update(deltaTime time.Duration) error {
	now := time.Now()
	if now.Sub(ss.lastMetricsLog) < ss.metricsInterval {
		return nil
	}
	ss.lastMetricsLog = now

	stats := ss.gameTicker.GetStats()
	ss.logger.Printf("[GameMetrics] %s: TPS %.1f/%d, тиков %d, время тика %v",
		ss.sessionID, stats["actual_tps"], stats["target_tps"],
		stats["tick_count"], stats["average_tick_time"])

	if actualTPS, ok := stats["actual_tps"].(float64); ok && actualTPS < float64(ss.gameTicker.targetTPS)*0.9 {
		ss.logger.Printf("[GameMetrics] ПРЕДУПРЕЖДЕНИЕ: TPS снижен до %.1f", actualTPS)
	}

	return nil
}

// GetName возвращает имя системы
func (ss *StatsSystem) GetName() string {
	return ss.name
}

// GetPriority возвращает приоритет системы
func (ss *StatsSystem) GetPriority() int {
	return ss.priority
}

// RegisterSessionSystems подключает к тикеру полный конвейер сессии
func RegisterSessionSystems(gt *GameTicker, sess *session.Session, broadcaster Broadcaster, asteroidEvery int, logger *log.Logger) {
	gt.RegisterSystem(NewInputSystem(sess, nil))
	gt.RegisterSystem(NewKinematicsSystem(sess))
	gt.RegisterSystem(NewCameraSystem(sess, nil))
	gt.RegisterSystem(NewBroadcastSystem(sess, broadcaster, asteroidEvery, logger))
	gt.RegisterSystem(NewStatsSystem(gt, sess.ID, logger))
}
