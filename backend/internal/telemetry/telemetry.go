package telemetry

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"solar-system/backend/internal/core/domain/entity"
	"solar-system/backend/internal/session"
)

// Типы записей телеметрии
const (
	EventFocus     = "focus"
	EventAnimation = "animation"
	EventInput     = "input"
)

// TelemetryData одна запись о событии сессии
type TelemetryData struct {
	Timestamp int64  `json:"timestamp"`        // Время в миллисекундах
	SessionID string `json:"session_id"`       // ID сессии зрителя
	Event     string `json:"event"`            // focus, animation, input
	Kind      string `json:"kind,omitempty"`   // Тип цели фокуса или входного события
	Target    string `json:"target,omitempty"` // ID тела или имя созвездия
	Reason    string `json:"reason,omitempty"` // Причина анимации камеры
}

// TelemetryManager собирает последние события сессий
type TelemetryManager struct {
	enabled    bool
	data       []TelemetryData
	mutex      sync.RWMutex
	maxEntries int
	logger     *log.Logger

	// Счетчики для статистики
	counters      map[string]int
	lastPrint     time.Time
	printInterval time.Duration
}

// NewTelemetryManager создает новый менеджер телеметрии
func NewTelemetryManager(logger *log.Logger) *TelemetryManager {
	if logger == nil {
		logger = log.Default()
	}
	return &TelemetryManager{
		enabled:       true,
		data:          make([]TelemetryData, 0),
		maxEntries:    200, // Храним последние 200 записей
		logger:        logger,
		counters:      make(map[string]int),
		lastPrint:     time.Now(),
		printInterval: 30 * time.Second,
	}
}

func (tm *TelemetryManager) record(entry TelemetryData, counter string) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	if !tm.enabled {
		return
	}

	entry.Timestamp = time.Now().UnixMilli()
	tm.data = append(tm.data, entry)

	// Ограничиваем размер буфера
	if len(tm.data) > tm.maxEntries {
		tm.data = tm.data[len(tm.data)-tm.maxEntries:]
	}

	tm.counters[counter]++
}

// FocusChanged записывает смену выделения
func (tm *TelemetryManager) FocusChanged(sessionID string, target entity.FocusTarget) {
	tm.record(TelemetryData{
		SessionID: sessionID,
		Event:     EventFocus,
		Kind:      target.Kind.String(),
		Target:    target.ID,
	}, EventFocus+"_"+target.Kind.String())
}

// AnimationStarted записывает запуск анимации камеры
func (tm *TelemetryManager) AnimationStarted(sessionID string, reason string) {
	tm.record(TelemetryData{
		SessionID: sessionID,
		Event:     EventAnimation,
		Reason:    reason,
	}, EventAnimation+"_"+reason)
}

// InputHandled считает входные события. В буфер попадают все, кроме
// движения мыши и синхронизации камеры, чтобы они не вытесняли остальное.
func (tm *TelemetryManager) InputHandled(sessionID string, kind session.EventKind) {
	if kind == session.EventPointerMove || kind == session.EventCameraSync {
		tm.mutex.Lock()
		if tm.enabled {
			tm.counters[EventInput+"_"+string(kind)]++
		}
		tm.mutex.Unlock()
		return
	}
	tm.record(TelemetryData{
		SessionID: sessionID,
		Event:     EventInput,
		Kind:      string(kind),
	}, EventInput+"_"+string(kind))
}

// PrintSummary выводит сводку телеметрии, не чаще printInterval
func (tm *TelemetryManager) PrintSummary() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	if !tm.enabled {
		return
	}

	now := time.Now()
	if now.Sub(tm.lastPrint) < tm.printInterval {
		return
	}

	tm.logger.Println("🔬 [Telemetry] ===== ТЕЛЕМЕТРИЯ СЕССИЙ =====")
	tm.logger.Printf("📊 [Telemetry] Всего записей: %d", len(tm.data))

	keys := make([]string, 0, len(tm.counters))
	for key := range tm.counters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		tm.logger.Printf("📈 [Telemetry] %s: %d", key, tm.counters[key])
	}

	tm.printRecentFocus()

	// Сброс счетчиков
	tm.counters = make(map[string]int)
	tm.lastPrint = now

	tm.logger.Println("🔬 [Telemetry] =============================")
}

// printRecentFocus выводит последнее выделение каждой сессии
func (tm *TelemetryManager) printRecentFocus() {
	latest := make(map[string]TelemetryData)
	for i := len(tm.data) - 1; i >= 0; i-- {
		entry := tm.data[i]
		if entry.Event != EventFocus {
			continue
		}
		if _, exists := latest[entry.SessionID]; !exists {
			latest[entry.SessionID] = entry
		}
	}

	for sessionID, data := range latest {
		timestamp := time.UnixMilli(data.Timestamp)
		tm.logger.Printf("🎯 [Telemetry] Сессия %s [%s]: %s %s",
			sessionID, timestamp.Format("15:04:05.000"), data.Kind, data.Target)
	}
}

// Run периодически печатает сводку до отмены контекста
func (tm *TelemetryManager) Run(ctx context.Context) {
	ticker := time.NewTicker(tm.printInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tm.PrintSummary()
		}
	}
}

// Entries возвращает копию буфера
func (tm *TelemetryManager) Entries() []TelemetryData {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	out := make([]TelemetryData, len(tm.data))
	copy(out, tm.data)
	return out
}

// GetTelemetryJSON возвращает телеметрию в JSON формате
func (tm *TelemetryManager) GetTelemetryJSON() (string, error) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	jsonData, err := json.MarshalIndent(tm.data, "", "  ")
	if err != nil {
		return "", err
	}

	return string(jsonData), nil
}

// SetEnabled включает/выключает телеметрию
func (tm *TelemetryManager) SetEnabled(enabled bool) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.enabled = enabled
	tm.logger.Printf("🔬 [Telemetry] Телеметрия %s", map[bool]string{true: "включена", false: "выключена"}[enabled])
}

// Clear очищает все данные телеметрии
func (tm *TelemetryManager) Clear() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.data = make([]TelemetryData, 0)
	tm.counters = make(map[string]int)
	tm.logger.Println("🔬 [Telemetry] Данные телеметрии очищены")
}

var _ session.Observer = (*TelemetryManager)(nil)
