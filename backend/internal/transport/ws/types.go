package ws

import (
	"encoding/json"
)

// Константы для WebSocket сообщений
const (
	// Сервер -> клиент
	MessageTypeCreate      = "create"       // Узлы сцены при подключении
	MessageTypeBatchUpdate = "batch_update" // Состояние сцены за тик
	MessageTypeFocus       = "focus"        // Смена выделения
	MessageTypeCursor      = "cursor"       // Смена курсора при наведении
	MessageTypeAck         = "cmd_ack"      // Подтверждение команды
	MessageTypeInfo        = "info"         // Информационное сообщение
	MessageTypeConfig      = "config"       // Параметры камеры и времени

	// В обе стороны
	MessageTypePing = "ping" // Пинг для измерения задержки
	MessageTypePong = "pong" // Ответ на пинг

	// Клиент -> сервер
	MessageTypeKeyDown     = "key_down"
	MessageTypeKeyUp       = "key_up"
	MessageTypeClick       = "click"
	MessageTypeDoubleClick = "dblclick"
	MessageTypePointerMove = "pointer_move"
	MessageTypeResize      = "resize"
	MessageTypeTimeScale   = "time_scale"
	MessageTypeResetSpeed  = "reset_speed"
	MessageTypeResetCamera = "reset_camera"
	MessageTypeShowLabels  = "show_labels"
	MessageTypeShowLines   = "show_lines"
	MessageTypeCameraSync  = "camera_sync"
	MessageTypeShuttleMode = "shuttle_mode"

	MessageTypeEntityVisible = "entity_visible"
)

// NodeMessage описание узла сцены для клиента
type NodeMessage struct {
	Type          string       `json:"type"`
	Name          string       `json:"name"`
	Kind          string       `json:"kind"`
	Parent        string       `json:"parent,omitempty"`
	Position      [3]float64   `json:"position"`
	Rotation      [4]float64   `json:"rotation"`
	Radius        float64      `json:"radius,omitempty"`
	Inner         float64      `json:"inner,omitempty"`
	Visible       bool         `json:"visible"`
	Layers        uint32       `json:"layers"`
	Color         string       `json:"color,omitempty"`
	Text          string       `json:"text,omitempty"`
	Points        [][3]float64 `json:"points,omitempty"`
	BodyID        string       `json:"body_id,omitempty"`
	Constellation string       `json:"constellation,omitempty"`
	Star          string       `json:"star,omitempty"`
	ServerTime    int64        `json:"server_time"`
}

// BatchUpdateMessage состояние сцены за один тик
type BatchUpdateMessage struct {
	Type       string          `json:"type"`
	Tick       uint64          `json:"tick"`
	ServerTime int64           `json:"server_time"`
	State      json.RawMessage `json:"state"`
}

// FocusMessage текущее выделение
type FocusMessage struct {
	Type          string `json:"type"`
	Body          string `json:"body,omitempty"`
	Constellation string `json:"constellation,omitempty"`
}

// CursorMessage курсор над сценой
type CursorMessage struct {
	Type   string `json:"type"`
	Cursor string `json:"cursor"`
}

// ConfigMessage параметры, нужные клиенту до первого кадра
type ConfigMessage struct {
	Type         string            `json:"type"`
	SessionID    string            `json:"session_id"`
	FOV          float64           `json:"fov"`
	Near         float64           `json:"near"`
	Far          float64           `json:"far"`
	TickRate     int               `json:"tick_rate"`
	TimeScale    float64           `json:"time_scale"`
	MaxTimeScale float64           `json:"max_time_scale"`
	Keys         map[string]string `json:"keys"`
	AnimationMs  int64             `json:"animation_ms"`
}

// AckMessage представляет подтверждение команды сервером
type AckMessage struct {
	Type       string `json:"type"`
	Cmd        string `json:"cmd"`
	ClientTime int64  `json:"client_time"`
	ServerTime int64  `json:"server_time"`
}

// PingMessage представляет пинг
type PingMessage struct {
	Type       string `json:"type"`
	ClientTime int64  `json:"client_time,omitempty"`
	ServerTime int64  `json:"server_time,omitempty"`
}

// PongMessage представляет ответ на пинг от сервера
type PongMessage struct {
	Type       string `json:"type"`
	ClientTime int64  `json:"client_time"`
	ServerTime int64  `json:"server_time"`
}

// InfoMessage представляет информационное сообщение от сервера
type InfoMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// InputMessage входное событие клиента. Поля заполнены в зависимости от типа.
type InputMessage struct {
	Type       string     `json:"type"`
	ClientTime int64      `json:"client_time,omitempty"`
	Key        string     `json:"key,omitempty"`
	Code       string     `json:"code,omitempty"`
	X          float64    `json:"x,omitempty"` // NDC для мыши
	Y          float64    `json:"y,omitempty"`
	Width      float64    `json:"width,omitempty"`
	Height     float64    `json:"height,omitempty"`
	Value      float64    `json:"value,omitempty"`
	Show       bool       `json:"show,omitempty"`
	Scope      string     `json:"scope,omitempty"`
	ID         string     `json:"id,omitempty"` // Для entity_visible
	Position   [3]float64 `json:"position,omitempty"`
	Target     [3]float64 `json:"target,omitempty"`
}
