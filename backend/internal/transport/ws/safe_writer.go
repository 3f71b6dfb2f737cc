package ws

import (
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"solar-system/backend/internal/session"
)

// writeWait ограничение на одну запись в сокет
const writeWait = 5 * time.Second

// SafeWriter обеспечивает потокобезопасную запись в WebSocket
type SafeWriter struct {
	conn  *websocket.Conn
	mutex sync.Mutex
}

// NewSafeWriter создает новый экземпляр SafeWriter
func NewSafeWriter(conn *websocket.Conn) *SafeWriter {
	return &SafeWriter{
		conn: conn,
	}
}

// WriteJSON потокобезопасно отправляет JSON данные через WebSocket
func (w *SafeWriter) WriteJSON(v interface{}) error {
	jsonData, err := json.Marshal(v)
	if err != nil {
		// Ошибка сериализации почти всегда из-за NaN, для map пробуем их заменить
		mapData, ok := v.(map[string]interface{})
		if !ok {
			return err
		}
		sanitizeMapValues(mapData)
		if jsonData, err = json.Marshal(mapData); err != nil {
			return err
		}
	}

	return w.WriteMessage(websocket.TextMessage, jsonData)
}

// WriteMessage потокобезопасно записывает сообщение в WebSocket соединение
func (w *SafeWriter) WriteMessage(messageType int, data []byte) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if err := w.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return w.conn.WriteMessage(messageType, data)
}

// Close закрывает соединение WebSocket
func (w *SafeWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.conn.Close()
}

// GetUnderlyingConn возвращает базовое WebSocket соединение
func (w *SafeWriter) GetUnderlyingConn() *websocket.Conn {
	return w.conn
}

// safeFloat заменяет NaN и бесконечности значением по умолчанию
func safeFloat(val, defaultVal float64) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return defaultVal
	}
	return val
}

// sanitizeMapValues рекурсивно обходит map и заменяет NaN значения на 0
func sanitizeMapValues(data map[string]interface{}) {
	for k, v := range data {
		switch val := v.(type) {
		case float64:
			data[k] = safeFloat(val, 0)
		case float32:
			data[k] = float32(safeFloat(float64(val), 0))
		case map[string]interface{}:
			sanitizeMapValues(val)
		case []interface{}:
			for i, item := range val {
				switch itemVal := item.(type) {
				case map[string]interface{}:
					sanitizeMapValues(itemVal)
				case float64:
					val[i] = safeFloat(itemVal, 0)
				case float32:
					val[i] = float32(safeFloat(float64(itemVal), 0))
				}
			}
		case []float64:
			sanitizeSlice(val)
		}
	}
}

func sanitizeSlice(values []float64) {
	for i, v := range values {
		values[i] = safeFloat(v, 0)
	}
}

// sanitizeSnapshot заменяет NaN в снимке. Снимок копируется по значению,
// но срезы общие с вызывающим, поэтому их содержимое копируется.
func sanitizeSnapshot(snap *session.Snapshot) {
	bodies := make([]session.BodyState, len(snap.Bodies))
	copy(bodies, snap.Bodies)
	for i := range bodies {
		sanitizeSlice(bodies[i].Position[:])
		sanitizeSlice(bodies[i].Rotation[:])
	}
	snap.Bodies = bodies

	if snap.Asteroids != nil {
		asteroids := make([]float64, len(snap.Asteroids))
		copy(asteroids, snap.Asteroids)
		sanitizeSlice(asteroids)
		snap.Asteroids = asteroids
	}

	sanitizeSlice(snap.Camera.Position[:])
	sanitizeSlice(snap.Camera.Target[:])
	snap.Camera.FOV = safeFloat(snap.Camera.FOV, 75)
	sanitizeSlice(snap.Shuttle.Position[:])
	sanitizeSlice(snap.Shuttle.Rotation[:])
	snap.Shuttle.Speed = safeFloat(snap.Shuttle.Speed, 0)
	snap.TimeScale = safeFloat(snap.TimeScale, 1)
}
