package telemetry

import (
	"bytes"
	"encoding/json"
	"log"
	"strings"
	"testing"
	"time"

	"solar-system/backend/internal/core/domain/entity"
	"solar-system/backend/internal/session"
)

func TestRecordsSessionEvents(t *testing.T) {
	tm := NewTelemetryManager(log.New(&bytes.Buffer{}, "", 0))

	tm.FocusChanged("viewer-1", entity.FocusTarget{Kind: entity.FocusBody, ID: "Mars"})
	tm.AnimationStarted("viewer-1", session.ReasonBody)
	tm.InputHandled("viewer-1", session.EventKeyDown)
	tm.InputHandled("viewer-1", session.EventPointerMove)

	entries := tm.Entries()
	if len(entries) != 3 {
		t.Fatalf("Pointer moves must not be buffered, got %d entries", len(entries))
	}
	if entries[0].Event != EventFocus || entries[0].Kind != "body" || entries[0].Target != "Mars" {
		t.Errorf("Unexpected focus entry: %+v", entries[0])
	}
	if entries[1].Reason != session.ReasonBody {
		t.Errorf("Unexpected animation entry: %+v", entries[1])
	}
	if tm.counters["input_pointer_move"] != 1 {
		t.Errorf("Pointer moves should still be counted, got %d", tm.counters["input_pointer_move"])
	}

	raw, err := tm.GetTelemetryJSON()
	if err != nil {
		t.Fatal(err)
	}
	var decoded []TelemetryData
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 3 {
		t.Errorf("Expected 3 JSON entries, got %d", len(decoded))
	}
}

func TestBufferIsBounded(t *testing.T) {
	tm := NewTelemetryManager(log.New(&bytes.Buffer{}, "", 0))
	for i := 0; i < 250; i++ {
		tm.AnimationStarted("viewer", session.ReasonReset)
	}
	if n := len(tm.Entries()); n != 200 {
		t.Errorf("Expected 200 entries, got %d", n)
	}

	tm.Clear()
	if n := len(tm.Entries()); n != 0 {
		t.Errorf("Expected empty buffer after Clear, got %d", n)
	}
}

func TestDisabledIgnoresEvents(t *testing.T) {
	tm := NewTelemetryManager(log.New(&bytes.Buffer{}, "", 0))
	tm.SetEnabled(false)
	tm.FocusChanged("viewer", entity.FocusTarget{Kind: entity.FocusConstellation, ID: "Orion"})
	if len(tm.Entries()) != 0 {
		t.Error("Disabled telemetry must not record")
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	tm := NewTelemetryManager(log.New(&buf, "", 0))
	tm.FocusChanged("viewer-7", entity.FocusTarget{Kind: entity.FocusConstellation, ID: "Orion"})

	tm.PrintSummary()
	if buf.Len() != 0 {
		t.Fatal("Summary must wait for the print interval")
	}

	tm.lastPrint = time.Now().Add(-time.Minute)
	tm.PrintSummary()
	out := buf.String()
	if !strings.Contains(out, "focus_constellation: 1") || !strings.Contains(out, "viewer-7") {
		t.Errorf("Unexpected summary:\n%s", out)
	}
	if len(tm.counters) != 0 {
		t.Error("Counters should reset after summary")
	}
}
