package session

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"solar-system/backend/internal/camera"
	"solar-system/backend/internal/config"
	"solar-system/backend/internal/core/domain/entity"
	"solar-system/backend/internal/focus"
	"solar-system/backend/internal/kinematics"
	"solar-system/backend/internal/picking"
	"solar-system/backend/internal/shuttle"
	"solar-system/backend/internal/world"
)

// inboxSize емкость очереди входных событий
const inboxSize = 256

// ErrInboxFull очередь событий переполнена, событие отброшено
var ErrInboxFull = errors.New("session inbox is full")

// Причины запуска анимации камеры
const (
	ReasonBody          = "body"
	ReasonConstellation = "constellation"
	ReasonReset         = "reset"
)

// Options параметры создания сессии
type Options struct {
	Catalog  *config.Catalog
	View     config.ViewConfig
	Epoch    time.Time // Нулевое значение оставляет фазы из каталога
	Seed     uint64
	Logger   *log.Logger
	Observer Observer
}

// Changes что изменилось с прошлого вызова TakeChanges
type Changes struct {
	Focus   bool
	Cursor  bool
	Display bool
}

// Session состояние сцены одного зрителя. Все методы, кроме Enqueue,
// должны вызываться только с горутины цикла сессии.
type Session struct {
	ID string

	logger   *log.Logger
	observer Observer
	view     config.ViewConfig

	scene    *world.Scene
	camera   *camera.Camera
	engine   *camera.Engine
	standoff camera.StandoffTable
	resolver *picking.Resolver

	bodyFocus          *focus.Selection
	constellationFocus *focus.Selection
	constellations     map[string]*entity.Constellation

	updater *kinematics.Updater
	belt    *kinematics.Belt

	shuttle     *shuttle.Shuttle
	shuttleMode bool
	savedPose   [2]mgl64.Vec3
	keys        map[string]string
	timeScale   float64
	cursor      picking.Cursor
	changes     Changes
	inbox       chan Event
}

// New собирает сессию из каталога. Ошибки каталога возвращаются сразу.
func New(id string, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	cat := opts.Catalog
	if cat == nil {
		var err error
		if cat, err = config.DefaultCatalog(); err != nil {
			return nil, err
		}
	}

	bodies := cat.BuildBodies()
	updater, err := kinematics.NewUpdater(bodies)
	if err != nil {
		return nil, fmt.Errorf("build updater: %w", err)
	}
	if !opts.Epoch.IsZero() {
		updater.SeedPhases(opts.Epoch)
	}

	cons, err := cat.BuildConstellations()
	if err != nil {
		return nil, fmt.Errorf("build constellations: %w", err)
	}

	classes := make([]string, 0, len(bodies)+1)
	for _, b := range bodies {
		classes = append(classes, string(b.Class))
	}
	if len(cons) > 0 {
		classes = append(classes, config.ConstellationClass)
	}
	standoff, err := camera.NewStandoffTable(cat.StandoffTable(), classes...)
	if err != nil {
		return nil, err
	}

	keys := cat.KeyMap()
	for key, bodyID := range keys {
		if _, ok := updater.Body(bodyID); !ok {
			return nil, fmt.Errorf("key %q bound to unknown body %s", key, bodyID)
		}
	}

	starfield := kinematics.GenerateStarfield(cat.Starfield.Count, cat.Starfield.Extent, opts.Seed)
	scene, err := world.BuildScene(bodies, cons, starfield, world.DisplayFlags{
		BodyLabels:          cat.Display.BodyLabels,
		BodyLines:           cat.Display.BodyLines,
		ConstellationLabels: cat.Display.ConstellationLabels,
		ConstellationLines:  cat.Display.ConstellationLines,
	})
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}

	belt := kinematics.NewBelt(kinematics.BeltParams{
		Count:       cat.Belt.Count,
		InnerRadius: cat.Belt.InnerRadius,
		OuterRadius: cat.Belt.OuterRadius,
		MinSize:     cat.Belt.MinSize,
		MaxSize:     cat.Belt.MaxSize,
	}, opts.Seed)

	view := opts.View
	if view.Camera.AnimationDuration == 0 && view.Camera.FOV == 0 {
		view = config.GetViewConfig()
	}

	cam := camera.New(view.Camera)
	s := &Session{
		ID:             id,
		logger:         logger,
		observer:       observer,
		view:           view,
		scene:          scene,
		camera:         cam,
		engine:         camera.NewEngine(cam, view.Camera),
		standoff:       standoff,
		resolver:       picking.NewResolver(scene.Graph),
		constellations: make(map[string]*entity.Constellation, len(cons)),
		updater:        updater,
		belt:           belt,
		shuttle:        shuttle.New(view.Shuttle),
		keys:           keys,
		timeScale:      view.Time.DefaultScale,
		cursor:         picking.CursorDefault,
		inbox:          make(chan Event, inboxSize),
	}
	for _, c := range cons {
		s.constellations[c.Name] = c
	}

	s.bodyFocus = focus.NewSelection(entity.FocusBody, scene.BodyDecorations(),
		cat.Display.BodyLabels, cat.Display.BodyLines)
	s.constellationFocus = focus.NewSelection(entity.FocusConstellation, scene.ConstellationDecorations(),
		cat.Display.ConstellationLabels, cat.Display.ConstellationLines)

	s.scene.SyncShuttle(s.shuttle.Position, s.shuttle.Orientation, false)

	logger.Printf("[Session] Сессия %s создана: %d тел, %d созвездий, %d астероидов",
		id, len(bodies), len(cons), len(belt.Asteroids))
	return s, nil
}

// Enqueue кладет событие в очередь без блокировки. Безопасен для любых горутин.
func (s *Session) Enqueue(ev Event) error {
	select {
	case s.inbox <- ev:
		return nil
	default:
		return ErrInboxFull
	}
}

// Drain применяет все накопленные события и возвращает их число
func (s *Session) Drain(now time.Time) int {
	n := 0
	for {
		select {
		case ev := <-s.inbox:
			s.Apply(ev, now)
			n++
		default:
			return n
		}
	}
}

// Apply применяет одно событие
func (s *Session) Apply(ev Event, now time.Time) {
	switch ev.Kind {
	case EventKeyDown:
		s.KeyDown(ev.Key, ev.Code, now)
	case EventKeyUp:
		s.KeyUp(ev.Key, ev.Code)
	case EventClick:
		s.Click(ev.Pointer, now)
	case EventDoubleClick:
		s.DoubleClick(ev.Pointer, now)
	case EventPointerMove:
		s.PointerMove(ev.Pointer)
	case EventResize:
		s.Resize(ev.Width, ev.Height)
	case EventTimeScale:
		s.SetTimeScale(ev.Value)
	case EventResetSpeed:
		s.ResetSpeed()
	case EventResetCamera:
		s.ResetCamera(now)
	case EventShowLabels:
		s.SetShowLabels(ev.Scope, ev.Flag)
	case EventShowLines:
		s.SetShowLines(ev.Scope, ev.Flag)
	case EventEntityVisible:
		s.SetEntityVisible(ev.Scope, ev.ID, ev.Flag)
	case EventCameraSync:
		s.SyncCamera(ev.Position, ev.Target)
	case EventShuttleMode:
		if ev.Flag != s.shuttleMode {
			s.ToggleShuttleMode()
		}
	default:
		s.logger.Printf("[Session] Неизвестный тип события: %s", ev.Kind)
		return
	}
	s.observer.InputHandled(s.ID, ev.Kind)
}

// KeyDown обрабатывает нажатие клавиши. Tab переключает режим шаттла,
// в режиме шаттла клавиши управляют им, иначе выбирают тело по таблице.
func (s *Session) KeyDown(key, code string, now time.Time) {
	if code == "Tab" {
		s.ToggleShuttleMode()
		return
	}

	if s.shuttleMode {
		if c, ok := shuttle.ControlForKey(key, code); ok {
			s.shuttle.SetControl(c, true)
		}
		return
	}

	if bodyID, ok := s.keys[strings.ToLower(key)]; ok {
		s.SelectBody(bodyID, now)
	}
}

// KeyUp отпускает орган управления шаттлом
func (s *Session) KeyUp(key, code string) {
	if !s.shuttleMode {
		return
	}
	if c, ok := shuttle.ControlForKey(key, code); ok {
		s.shuttle.SetControl(c, false)
	}
}

// Click выбирает тело под курсором
func (s *Session) Click(ndc mgl64.Vec2, now time.Time) {
	if bodyID, ok := s.resolver.Click(ndc, s.camera); ok {
		s.SelectBody(bodyID, now)
	}
}

// DoubleClick выбирает созвездие под курсором
func (s *Session) DoubleClick(ndc mgl64.Vec2, now time.Time) {
	if name, ok := s.resolver.DoubleClick(ndc, s.camera); ok {
		s.SelectConstellation(name, now)
	}
}

// PointerMove пересчитывает подсказку курсора
func (s *Session) PointerMove(ndc mgl64.Vec2) picking.Cursor {
	cursor := s.resolver.Hover(ndc, s.camera)
	if cursor != s.cursor {
		s.cursor = cursor
		s.changes.Cursor = true
	}
	return cursor
}

// SelectBody переключает выделение тела и направляет камеру на него.
// Неизвестный id молча игнорируется.
func (s *Session) SelectBody(id string, now time.Time) bool {
	body, ok := s.updater.Body(id)
	if !ok {
		return false
	}
	target, changed := s.bodyFocus.Toggle(id)
	if !changed {
		return false
	}
	s.changes.Focus = true
	s.observer.FocusChanged(s.ID, target)

	if s.shuttleMode {
		return true
	}

	d, _ := s.standoff.Distance(string(body.Class))
	s.engine.FocusOn(body.Position, d, now)
	s.observer.AnimationStarted(s.ID, ReasonBody)
	return true
}

// SelectConstellation переключает выделение созвездия и направляет камеру на его центр
func (s *Session) SelectConstellation(name string, now time.Time) bool {
	c, ok := s.constellations[name]
	if !ok {
		return false
	}
	target, changed := s.constellationFocus.Toggle(name)
	if !changed {
		return false
	}
	s.changes.Focus = true
	s.observer.FocusChanged(s.ID, target)

	if s.shuttleMode {
		return true
	}

	d, _ := s.standoff.Distance(config.ConstellationClass)
	s.engine.FocusOn(c.Center(), d, now)
	s.observer.AnimationStarted(s.ID, ReasonConstellation)
	return true
}

// Resize обновляет соотношение сторон камеры
func (s *Session) Resize(width, height float64) {
	s.camera.SetAspect(width, height)
}

// SetTimeScale задает множитель времени в пределах [0, MaxScale]
func (s *Session) SetTimeScale(scale float64) {
	if math.IsNaN(scale) {
		return
	}
	s.timeScale = mgl64.Clamp(scale, 0, s.view.Time.MaxScale)
	s.changes.Display = true
}

// ResetSpeed возвращает множитель времени по умолчанию
func (s *Session) ResetSpeed() {
	s.timeScale = s.view.Time.DefaultScale
	s.changes.Display = true
}

// ResetCamera запускает перелет в домашнюю позицию. В режиме шаттла игнорируется.
func (s *Session) ResetCamera(now time.Time) {
	if s.shuttleMode {
		return
	}
	s.engine.Reset(now)
	s.observer.AnimationStarted(s.ID, ReasonReset)
}

// SetShowLabels задает глобальный флаг меток для тел или созвездий
func (s *Session) SetShowLabels(scope Scope, show bool) {
	switch scope {
	case ScopeBodies:
		s.bodyFocus.SetShowLabels(show)
	case ScopeConstellations:
		s.constellationFocus.SetShowLabels(show)
	default:
		return
	}
	s.changes.Display = true
}

// SetShowLines задает глобальный флаг линий для тел (орбиты) или созвездий
func (s *Session) SetShowLines(scope Scope, show bool) {
	switch scope {
	case ScopeBodies:
		s.bodyFocus.SetShowLines(show)
	case ScopeConstellations:
		s.constellationFocus.SetShowLines(show)
	default:
		return
	}
	s.changes.Display = true
}

// SetEntityVisible скрывает или показывает тело либо созвездие целиком
func (s *Session) SetEntityVisible(scope Scope, id string, visible bool) {
	switch scope {
	case ScopeBodies:
		s.bodyFocus.SetEntityVisible(id, visible)
	case ScopeConstellations:
		s.constellationFocus.SetEntityVisible(id, visible)
	default:
		return
	}
	s.changes.Display = true
}

// SyncCamera принимает позу камеры от орбитального управления клиента.
// Во время анимации и в режиме шаттла камерой владеет сервер.
func (s *Session) SyncCamera(position, target mgl64.Vec3) bool {
	if s.shuttleMode || s.engine.Active() {
		return false
	}
	if !finite(position) || !finite(target) {
		return false
	}
	s.camera.Position = position
	s.camera.Target = target
	return true
}

// ToggleShuttleMode входит в режим шаттла или выходит из него
func (s *Session) ToggleShuttleMode() bool {
	s.shuttleMode = !s.shuttleMode

	if s.shuttleMode {
		s.savedPose = [2]mgl64.Vec3{s.camera.Position, s.camera.Target}
		s.engine.Cancel()
		s.shuttle.Position = s.camera.Position
		s.shuttle.Visible = true
	} else {
		s.camera.Position, s.camera.Target = s.savedPose[0], s.savedPose[1]
		s.shuttle.ClearControls()
		s.shuttle.Visible = false
	}

	s.scene.SyncShuttle(s.shuttle.Position, s.shuttle.Orientation, s.shuttle.Visible)
	s.changes.Display = true
	s.logger.Printf("[Session] %s: режим шаттла = %v", s.ID, s.shuttleMode)
	return s.shuttleMode
}

// StepKinematics продвигает орбиты и пояс с учетом множителя времени
func (s *Session) StepKinematics(dt time.Duration) {
	scaled := dt.Seconds() * s.timeScale
	s.updater.Step(scaled)
	s.belt.Step(scaled)
	s.scene.SyncBodies(s.updater.Bodies())
}

// StepCamera двигает шаттл и камеру преследования либо анимацию фокуса
func (s *Session) StepCamera(dt time.Duration, now time.Time) {
	if s.shuttleMode {
		s.shuttle.Update(dt.Seconds())
		s.camera.Position = s.shuttle.CameraPosition()
		s.camera.Target = s.shuttle.CameraTarget()
		s.scene.SyncShuttle(s.shuttle.Position, s.shuttle.Orientation, true)
		return
	}
	s.engine.Update(now)
}

// Frame выполняет полный кадр: события, кинематика, камера
func (s *Session) Frame(dt time.Duration, now time.Time) {
	s.Drain(now)
	s.StepKinematics(dt)
	s.StepCamera(dt, now)
}

// TakeChanges возвращает и сбрасывает флаги изменений
func (s *Session) TakeChanges() Changes {
	c := s.changes
	s.changes = Changes{}
	return c
}

func finite(v mgl64.Vec3) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Accessors

func (s *Session) Scene() *world.Scene { return s.scene }
func (s *Session) Camera() *camera.Camera { return s.camera }
func (s *Session) Animating() bool { return s.engine.Active() }
func (s *Session) TimeScale() float64 { return s.timeScale }
func (s *Session) ShuttleMode() bool { return s.shuttleMode }
func (s *Session) Shuttle() *shuttle.Shuttle { return s.shuttle }
func (s *Session) Cursor() picking.Cursor { return s.cursor }
func (s *Session) Asteroids() []entity.Asteroid { return s.belt.Asteroids }
func (s *Session) Bodies() []*entity.CelestialBody { return s.updater.Bodies() }

// Body ищет тело по id
func (s *Session) Body(id string) (*entity.CelestialBody, bool) {
	return s.updater.Body(id)
}

// FocusedBody возвращает id выделенного тела
func (s *Session) FocusedBody() (string, bool) {
	return s.bodyFocus.Active()
}

// FocusedConstellation возвращает имя выделенного созвездия
func (s *Session) FocusedConstellation() (string, bool) {
	return s.constellationFocus.Active()
}

// ShowLabels значение глобального флага меток
func (s *Session) ShowLabels(scope Scope) bool {
	if scope == ScopeConstellations {
		return s.constellationFocus.ShowLabels()
	}
	return s.bodyFocus.ShowLabels()
}

// ShowLines значение глобального флага линий
func (s *Session) ShowLines(scope Scope) bool {
	if scope == ScopeConstellations {
		return s.constellationFocus.ShowLines()
	}
	return s.bodyFocus.ShowLines()
}
