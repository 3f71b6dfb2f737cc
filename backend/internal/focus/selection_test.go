package focus

import (
	"sort"
	"testing"

	"solar-system/backend/internal/core/domain/entity"
)

// fakeSink запоминает видимость декораций
type fakeSink struct {
	labels map[string]bool
	glows  map[string]bool
	lines  map[string]bool
	groups map[string]bool
}

func newFakeSink(ids ...string) *fakeSink {
	s := &fakeSink{
		labels: map[string]bool{},
		glows:  map[string]bool{},
		lines:  map[string]bool{},
		groups: map[string]bool{},
	}
	for _, id := range ids {
		s.groups[id] = true
	}
	return s
}

func (s *fakeSink) Has(id string) bool {
	_, ok := s.groups[id]
	return ok
}

func (s *fakeSink) IDs() []string {
	ids := make([]string, 0, len(s.groups))
	for id := range s.groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *fakeSink) SetLabelVisible(id string, v bool)  { s.labels[id] = v }
func (s *fakeSink) SetGlowVisible(id string, v bool)   { s.glows[id] = v }
func (s *fakeSink) SetLinesVisible(id string, v bool)  { s.lines[id] = v }
func (s *fakeSink) SetEntityVisible(id string, v bool) { s.groups[id] = v }

func TestToggleRoundTrip(t *testing.T) {
	sink := newFakeSink("Orion", "Leo")
	sel := NewSelection(entity.FocusConstellation, sink, true, true)

	target, changed := sel.Toggle("Orion")
	if !changed || target.ID != "Orion" || target.Kind != entity.FocusConstellation {
		t.Fatalf("Unexpected target %+v", target)
	}
	if !sink.labels["Orion"] || !sink.glows["Orion"] {
		t.Error("Active entity should show label and glow")
	}

	target, _ = sel.Toggle("Orion")
	if !target.IsNone() {
		t.Errorf("Second toggle should clear focus, got %+v", target)
	}
	if sink.glows["Orion"] || sink.labels["Orion"] != true {
		t.Error("Cleared entity should return to default decorations")
	}
}

func TestToggleSwitchesAtoB(t *testing.T) {
	sink := newFakeSink("Orion", "Leo")
	sel := NewSelection(entity.FocusConstellation, sink, false, true)

	sel.Toggle("Orion")
	sel.Toggle("Leo")

	if id, _ := sel.Active(); id != "Leo" {
		t.Errorf("Expected Leo active, got %s", id)
	}
	if sink.glows["Orion"] || sink.labels["Orion"] {
		t.Error("Previous entity should lose label and glow")
	}
	if !sink.glows["Leo"] || !sink.labels["Leo"] {
		t.Error("New entity should show label and glow")
	}
}

func TestToggleSwitchHidesPreviousLabel(t *testing.T) {
	sink := newFakeSink("Aries", "Taurus")
	sel := NewSelection(entity.FocusConstellation, sink, true, true)

	sel.Toggle("Aries")
	sel.Toggle("Taurus")

	if sink.labels["Aries"] || sink.glows["Aries"] {
		t.Error("Previous entity should hide label and glow even with labels flag on")
	}
	if !sink.labels["Taurus"] || !sink.glows["Taurus"] {
		t.Error("New entity should show label and glow")
	}

	sel.Toggle("Taurus")
	if !sink.labels["Taurus"] || sink.glows["Taurus"] {
		t.Error("Deselected entity should follow the labels flag and lose glow")
	}
}

func TestToggleUnknownIsNoop(t *testing.T) {
	sink := newFakeSink("Earth")
	sel := NewSelection(entity.FocusBody, sink, false, true)
	sel.Toggle("Earth")

	target, changed := sel.Toggle("Vulcan")
	if changed || target.ID != "Earth" {
		t.Errorf("Unknown id must not change selection, got %+v changed=%v", target, changed)
	}
	if _, ok := sink.labels["Vulcan"]; ok {
		t.Error("Unknown id must not touch decorations")
	}
}

func TestShowLabelsKeepsActive(t *testing.T) {
	sink := newFakeSink("Orion", "Leo", "Virgo")
	sel := NewSelection(entity.FocusConstellation, sink, true, true)
	sel.Toggle("Leo")

	if sel.ToggleLabels() {
		t.Fatal("ToggleLabels should return false after toggling from true")
	}
	if sink.labels["Orion"] || sink.labels["Virgo"] {
		t.Error("Inactive labels should be hidden")
	}
	if !sink.labels["Leo"] {
		t.Error("Active label must stay visible")
	}

	sel.SetShowLabels(true)
	for _, id := range []string{"Orion", "Leo", "Virgo"} {
		if !sink.labels[id] {
			t.Errorf("%s label should be visible", id)
		}
	}
}

func TestShowLinesAppliesToAll(t *testing.T) {
	sink := newFakeSink("Orion", "Leo")
	sel := NewSelection(entity.FocusConstellation, sink, true, true)
	sel.Toggle("Orion")

	if sel.ToggleLines() {
		t.Fatal("Expected lines off")
	}
	if sink.lines["Orion"] || sink.lines["Leo"] {
		t.Error("Lines flag should apply to every entity including the active one")
	}
}

func TestClearAndEntityVisibility(t *testing.T) {
	sink := newFakeSink("Mars")
	sel := NewSelection(entity.FocusBody, sink, false, true)
	sel.Toggle("Mars")
	sel.Clear()

	if _, ok := sel.Active(); ok {
		t.Error("Clear should drop the selection")
	}
	if sink.glows["Mars"] {
		t.Error("Clear should hide glow")
	}

	sel.SetEntityVisible("Mars", false)
	sel.SetEntityVisible("Pluto", false)
	if sink.groups["Mars"] {
		t.Error("Mars group should be hidden")
	}
	if _, ok := sink.groups["Pluto"]; ok {
		t.Error("Unknown entity must not be created")
	}
}
