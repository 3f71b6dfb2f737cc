package focus

import (
	"solar-system/backend/internal/core/domain/entity"
)

// Decorations приемник видимости меток, подсветки и линий сущностей
type Decorations interface {
	Has(id string) bool
	IDs() []string
	SetLabelVisible(id string, visible bool)
	SetGlowVisible(id string, visible bool)
	SetLinesVisible(id string, visible bool)
	SetEntityVisible(id string, visible bool)
}

// Selection хранит не более одной активной сущности своего типа.
// Активная сущность всегда показывает метку и подсветку, остальные
// следуют глобальным флагам.
type Selection struct {
	kind entity.FocusKind
	sink Decorations

	active     string
	showLabels bool
	showLines  bool
}

// NewSelection создает состояние и сразу применяет флаги ко всем сущностям
func NewSelection(kind entity.FocusKind, sink Decorations, showLabels, showLines bool) *Selection {
	s := &Selection{
		kind:       kind,
		sink:       sink,
		showLabels: showLabels,
		showLines:  showLines,
	}
	for _, id := range sink.IDs() {
		s.sink.SetLabelVisible(id, showLabels)
		s.sink.SetGlowVisible(id, false)
		s.sink.SetLinesVisible(id, showLines)
	}
	return s
}

// Toggle выделяет сущность или снимает выделение, если она уже активна.
// Неизвестный id ничего не меняет, второй результат тогда false.
func (s *Selection) Toggle(id string) (entity.FocusTarget, bool) {
	if !s.sink.Has(id) {
		return s.Target(), false
	}

	if s.active == id {
		s.restore(id)
		s.active = ""
		return s.Target(), true
	}

	// Предыдущая активная сущность теряет метку и подсветку
	if s.active != "" {
		s.sink.SetLabelVisible(s.active, false)
		s.sink.SetGlowVisible(s.active, false)
	}

	s.active = id
	s.sink.SetLabelVisible(id, true)
	s.sink.SetGlowVisible(id, true)
	return s.Target(), true
}

// Clear снимает выделение
func (s *Selection) Clear() {
	if s.active == "" {
		return
	}
	s.restore(s.active)
	s.active = ""
}

func (s *Selection) restore(id string) {
	s.sink.SetLabelVisible(id, s.showLabels)
	s.sink.SetGlowVisible(id, false)
}

// Active возвращает id активной сущности
func (s *Selection) Active() (string, bool) {
	return s.active, s.active != ""
}

// Target возвращает активную цель в общем виде
func (s *Selection) Target() entity.FocusTarget {
	if s.active == "" {
		return entity.FocusTarget{}
	}
	return entity.FocusTarget{Kind: s.kind, ID: s.active}
}

// ShowLabels текущее значение глобального флага меток
func (s *Selection) ShowLabels() bool {
	return s.showLabels
}

// ShowLines текущее значение глобального флага линий
func (s *Selection) ShowLines() bool {
	return s.showLines
}

// SetShowLabels применяет флаг ко всем метками, кроме активной
func (s *Selection) SetShowLabels(show bool) {
	s.showLabels = show
	for _, id := range s.sink.IDs() {
		if id == s.active {
			continue
		}
		s.sink.SetLabelVisible(id, show)
	}
}

// ToggleLabels переключает флаг меток и возвращает новое значение
func (s *Selection) ToggleLabels() bool {
	s.SetShowLabels(!s.showLabels)
	return s.showLabels
}

// SetShowLines применяет флаг ко всем линиям, выделение на них не влияет
func (s *Selection) SetShowLines(show bool) {
	s.showLines = show
	for _, id := range s.sink.IDs() {
		s.sink.SetLinesVisible(id, show)
	}
}

// ToggleLines переключает флаг линий и возвращает новое значение
func (s *Selection) ToggleLines() bool {
	s.SetShowLines(!s.showLines)
	return s.showLines
}

// SetEntityVisible скрывает или показывает сущность целиком
func (s *Selection) SetEntityVisible(id string, visible bool) {
	if !s.sink.Has(id) {
		return
	}
	s.sink.SetEntityVisible(id, visible)
}
