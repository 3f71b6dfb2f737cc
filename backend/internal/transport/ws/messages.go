package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"solar-system/backend/internal/session"
)

var (
	// ErrInvalidMessage сообщение не удалось разобрать
	ErrInvalidMessage = errors.New("invalid message")
	// ErrUnknownMessageType тип сообщения не поддерживается
	ErrUnknownMessageType = errors.New("unknown message type")
)

// inputKinds соответствие типов сообщений событиям сессии
var inputKinds = map[string]session.EventKind{
	MessageTypeKeyDown:     session.EventKeyDown,
	MessageTypeKeyUp:       session.EventKeyUp,
	MessageTypeClick:       session.EventClick,
	MessageTypeDoubleClick: session.EventDoubleClick,
	MessageTypePointerMove: session.EventPointerMove,
	MessageTypeResize:      session.EventResize,
	MessageTypeTimeScale:   session.EventTimeScale,
	MessageTypeResetSpeed:  session.EventResetSpeed,
	MessageTypeResetCamera: session.EventResetCamera,
	MessageTypeShowLabels:  session.EventShowLabels,
	MessageTypeShowLines:   session.EventShowLines,
	MessageTypeCameraSync:  session.EventCameraSync,
	MessageTypeShuttleMode: session.EventShuttleMode,

	MessageTypeEntityVisible: session.EventEntityVisible,
}

// GetCurrentServerTime возвращает текущее серверное время в миллисекундах
func GetCurrentServerTime() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// GetMessageType возвращает тип сообщения на основе входных данных
func GetMessageType(data []byte) (string, error) {
	var baseMessage struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(data, &baseMessage); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	return baseMessage.Type, nil
}

// ParseMessage разбирает входящее сообщение клиента.
// Возвращает *PingMessage или *InputMessage.
func ParseMessage(data []byte) (interface{}, error) {
	messageType, err := GetMessageType(data)
	if err != nil {
		return nil, err
	}

	switch {
	case messageType == MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%w: ping: %v", ErrInvalidMessage, err)
		}
		return &msg, nil

	case inputKinds[messageType] != "":
		var msg InputMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMessage, messageType, err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, messageType)
	}
}

// ToEvent переводит сообщение клиента в событие сессии
func (m *InputMessage) ToEvent() (session.Event, error) {
	kind, ok := inputKinds[m.Type]
	if !ok {
		return session.Event{}, fmt.Errorf("%w: %q", ErrUnknownMessageType, m.Type)
	}

	ev := session.Event{
		Kind:     kind,
		Key:      m.Key,
		Code:     m.Code,
		Pointer:  mgl64.Vec2{m.X, m.Y},
		Width:    m.Width,
		Height:   m.Height,
		Value:    m.Value,
		Flag:     m.Show,
		ID:       m.ID,
		Position: mgl64.Vec3(m.Position),
		Target:   mgl64.Vec3(m.Target),
	}

	switch kind {
	case session.EventKeyDown, session.EventKeyUp:
		if m.Key == "" && m.Code == "" {
			return session.Event{}, fmt.Errorf("%w: %s without key", ErrInvalidMessage, m.Type)
		}
	case session.EventEntityVisible:
		if m.ID == "" {
			return session.Event{}, fmt.Errorf("%w: %s without id", ErrInvalidMessage, m.Type)
		}
		fallthrough
	case session.EventShowLabels, session.EventShowLines:
		switch session.Scope(m.Scope) {
		case session.ScopeBodies, session.ScopeConstellations:
			ev.Scope = session.Scope(m.Scope)
		case "":
			ev.Scope = session.ScopeBodies
		default:
			return session.Event{}, fmt.Errorf("%w: scope %q", ErrInvalidMessage, m.Scope)
		}
	}

	return ev, nil
}

// NewPongMessage создает ответ на пинг
func NewPongMessage(clientTime int64) *PongMessage {
	return &PongMessage{
		Type:       MessageTypePong,
		ClientTime: clientTime,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewPingMessage создает пинг от сервера
func NewPingMessage() *PingMessage {
	return &PingMessage{
		Type:       MessageTypePing,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewAckMessage создает подтверждение команды
func NewAckMessage(cmd string, clientTime int64) *AckMessage {
	return &AckMessage{
		Type:       MessageTypeAck,
		Cmd:        cmd,
		ClientTime: clientTime,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewInfoMessage создает новое информационное сообщение
func NewInfoMessage(message string) *InfoMessage {
	return &InfoMessage{
		Type:    MessageTypeInfo,
		Message: message,
	}
}

// NewFocusMessage создает сообщение о выделении
func NewFocusMessage(focus session.FocusState) *FocusMessage {
	return &FocusMessage{
		Type:          MessageTypeFocus,
		Body:          focus.Body,
		Constellation: focus.Constellation,
	}
}

// NewCursorMessage создает сообщение о курсоре
func NewCursorMessage(cursor string) *CursorMessage {
	return &CursorMessage{
		Type:   MessageTypeCursor,
		Cursor: cursor,
	}
}

// NewBatchUpdateMessage упаковывает снимок сцены. NaN заменяются нулями.
func NewBatchUpdateMessage(tick uint64, snap session.Snapshot) (*BatchUpdateMessage, error) {
	sanitizeSnapshot(&snap)
	state, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return &BatchUpdateMessage{
		Type:       MessageTypeBatchUpdate,
		Tick:       tick,
		ServerTime: GetCurrentServerTime(),
		State:      state,
	}, nil
}
