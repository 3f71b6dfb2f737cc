package session

import (
	"github.com/go-gl/mathgl/mgl64"
)

// EventKind тип входного события зрителя
type EventKind string

const (
	EventKeyDown     EventKind = "key_down"
	EventKeyUp       EventKind = "key_up"
	EventClick       EventKind = "click"
	EventDoubleClick EventKind = "dblclick"
	EventPointerMove EventKind = "pointer_move"
	EventResize      EventKind = "resize"
	EventTimeScale   EventKind = "time_scale"
	EventResetSpeed  EventKind = "reset_speed"
	EventResetCamera EventKind = "reset_camera"
	EventShowLabels  EventKind = "show_labels"
	EventShowLines   EventKind = "show_lines"
	EventCameraSync  EventKind = "camera_sync"
	EventShuttleMode EventKind = "shuttle_mode"

	EventEntityVisible EventKind = "entity_visible"
)

// Scope к каким сущностям относится глобальный флаг
type Scope string

const (
	ScopeBodies         Scope = "bodies"
	ScopeConstellations Scope = "constellations"
)

// Event входное событие. Заполнены только поля, нужные его типу.
type Event struct {
	Kind EventKind

	Key  string
	Code string

	Pointer mgl64.Vec2 // NDC для click, dblclick и pointer_move

	Width  float64
	Height float64

	Value float64
	Flag  bool
	Scope Scope
	ID    string // тело или созвездие для entity_visible

	Position mgl64.Vec3
	Target   mgl64.Vec3
}
