package session

import (
	"solar-system/backend/internal/core/domain/entity"
)

// Observer получает уведомления о событиях сессии.
// Вызывается на горутине цикла сессии, реализация не должна блокировать.
type Observer interface {
	FocusChanged(sessionID string, target entity.FocusTarget)
	AnimationStarted(sessionID string, reason string)
	InputHandled(sessionID string, kind EventKind)
}

type nopObserver struct{}

func (nopObserver) FocusChanged(string, entity.FocusTarget) {}
func (nopObserver) AnimationStarted(string, string)         {}
func (nopObserver) InputHandled(string, EventKind)          {}

type multiObserver []Observer

// MultiObserver рассылает уведомления всем наблюдателям по порядку
func MultiObserver(observers ...Observer) Observer {
	var list multiObserver
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	if len(list) == 0 {
		return nopObserver{}
	}
	return list
}

func (m multiObserver) FocusChanged(id string, target entity.FocusTarget) {
	for _, o := range m {
		o.FocusChanged(id, target)
	}
}

func (m multiObserver) AnimationStarted(id string, reason string) {
	for _, o := range m {
		o.AnimationStarted(id, reason)
	}
}

func (m multiObserver) InputHandled(id string, kind EventKind) {
	for _, o := range m {
		o.InputHandled(id, kind)
	}
}
