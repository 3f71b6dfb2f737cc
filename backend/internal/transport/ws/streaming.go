package ws

import (
	"fmt"
	"log"

	"solar-system/backend/internal/game"
	"solar-system/backend/internal/picking"
	"solar-system/backend/internal/session"
)

// Connection одно подключение зрителя: сокет, сессия и ее цикл.
// Реализует game.Broadcaster, методы вызываются с горутины цикла.
type Connection struct {
	ID      string
	IP      string
	writer  *SafeWriter
	session *session.Session
	ticker  *game.GameTicker
	logger  *log.Logger
}

// SendSnapshot отправляет batch_update
func (c *Connection) SendSnapshot(tick uint64, snap session.Snapshot) error {
	msg, err := NewBatchUpdateMessage(tick, snap)
	if err != nil {
		return err
	}
	if err := c.writer.WriteJSON(msg); err != nil {
		return fmt.Errorf("send batch_update to %s: %w", c.ID, err)
	}
	return nil
}

// SendFocus отправляет смену выделения
func (c *Connection) SendFocus(focus session.FocusState) error {
	if err := c.writer.WriteJSON(NewFocusMessage(focus)); err != nil {
		return fmt.Errorf("send focus to %s: %w", c.ID, err)
	}
	return nil
}

// SendCursor отправляет смену курсора
func (c *Connection) SendCursor(cursor picking.Cursor) error {
	if err := c.writer.WriteJSON(NewCursorMessage(string(cursor))); err != nil {
		return fmt.Errorf("send cursor to %s: %w", c.ID, err)
	}
	return nil
}

// Stats статистика и здоровье цикла соединения
func (c *Connection) Stats() map[string]interface{} {
	stats := c.ticker.GetStats()
	stats["ip"] = c.IP
	stats["health"] = c.ticker.CheckHealth()
	if bottlenecks := c.ticker.FindBottlenecks(); len(bottlenecks) > 0 {
		stats["bottlenecks"] = bottlenecks
	}
	return stats
}

var _ game.Broadcaster = (*Connection)(nil)
