package game

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"
)

type recordingSystem struct {
	name     string
	priority int
	calls    *[]string
	mu       *sync.Mutex
	err      error
	panicMsg string
}

func (rs *recordingSystem) Update(deltaTime time.Duration) error {
	rs.mu.Lock()
	*rs.calls = append(*rs.calls, rs.name)
	rs.mu.Unlock()
	if rs.panicMsg != "" {
		panic(rs.panicMsg)
	}
	return rs.err
}

func (rs *recordingSystem) GetName() string  { return rs.name }
func (rs *recordingSystem) GetPriority() int { return rs.priority }

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestSystemsRunInPriorityOrder(t *testing.T) {
	gt := NewGameTicker(context.Background(), 30, quietLogger())

	var calls []string
	var mu sync.Mutex
	for _, s := range []struct {
		name     string
		priority int
	}{{"broadcast", 20}, {"input", 0}, {"camera", 10}, {"kinematics", 5}} {
		gt.RegisterSystem(&recordingSystem{name: s.name, priority: s.priority, calls: &calls, mu: &mu})
	}

	gt.Tick(time.Now())

	want := []string{"input", "kinematics", "camera", "broadcast"}
	if len(calls) != len(want) {
		t.Fatalf("Expected %d calls, got %v", len(want), calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("Call %d: expected %s, got %s", i, want[i], calls[i])
		}
	}
	if gt.GetTickCount() != 1 {
		t.Errorf("Expected tick count 1, got %d", gt.GetTickCount())
	}
}

func TestPanickingSystemIsRecovered(t *testing.T) {
	gt := NewGameTicker(context.Background(), 30, quietLogger())

	var calls []string
	var mu sync.Mutex
	gt.RegisterSystem(&recordingSystem{name: "bad", priority: 0, calls: &calls, mu: &mu, panicMsg: "boom"})
	gt.RegisterSystem(&recordingSystem{name: "failing", priority: 1, calls: &calls, mu: &mu, err: errors.New("fail")})
	gt.RegisterSystem(&recordingSystem{name: "good", priority: 2, calls: &calls, mu: &mu})

	gt.Tick(time.Now())

	if len(calls) != 3 || calls[2] != "good" {
		t.Fatalf("Systems after a panic must still run, got %v", calls)
	}

	for _, name := range []string{"bad", "failing"} {
		m, ok := gt.perfMonitor.SystemStats(name)
		if !ok {
			t.Fatalf("No metrics for %s", name)
		}
		if m.Errors != 1 {
			t.Errorf("%s: expected 1 error, got %d", name, m.Errors)
		}
	}
	if m, _ := gt.perfMonitor.SystemStats("good"); m.TotalExecutions != 1 || m.Errors != 0 {
		t.Errorf("Unexpected metrics for good system: %+v", m)
	}
}

func TestDeltaTimeBetweenTicks(t *testing.T) {
	gt := NewGameTicker(context.Background(), 20, quietLogger())

	var deltas []time.Duration
	gt.RegisterSystem(deltaSystem(func(d time.Duration) { deltas = append(deltas, d) }))

	start := time.Unix(100, 0)
	gt.Tick(start)
	gt.Tick(start.Add(70 * time.Millisecond))

	if deltas[0] != gt.TickDuration() {
		t.Errorf("First tick should use nominal duration %v, got %v", gt.TickDuration(), deltas[0])
	}
	if deltas[1] != 70*time.Millisecond {
		t.Errorf("Expected 70ms delta, got %v", deltas[1])
	}
}

type deltaSystem func(time.Duration)

func (d deltaSystem) Update(deltaTime time.Duration) error { d(deltaTime); return nil }
func (d deltaSystem) GetName() string                      { return "delta" }
func (d deltaSystem) GetPriority() int                     { return 0 }

func TestStartStopAndPause(t *testing.T) {
	gt := NewGameTicker(context.Background(), 200, quietLogger())

	var mu sync.Mutex
	var calls []string
	gt.RegisterSystem(&recordingSystem{name: "s", calls: &calls, mu: &mu})

	var observed int
	var obsMu sync.Mutex
	gt.OnTick(func(time.Duration) {
		obsMu.Lock()
		observed++
		obsMu.Unlock()
	})

	if err := gt.Start(); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for gt.GetTickCount() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("Ticker did not produce ticks")
		}
		time.Sleep(5 * time.Millisecond)
	}

	gt.Pause()
	time.Sleep(20 * time.Millisecond)
	paused := gt.GetTickCount()
	time.Sleep(50 * time.Millisecond)
	if gt.GetTickCount() != paused {
		t.Errorf("Ticks advanced while paused: %d -> %d", paused, gt.GetTickCount())
	}
	if stats := gt.GetStats(); stats["is_paused"] != true {
		t.Error("Stats should report pause")
	}

	gt.Resume()
	deadline = time.Now().Add(2 * time.Second)
	for gt.GetTickCount() <= paused {
		if time.Now().After(deadline) {
			t.Fatal("Ticker did not resume")
		}
		time.Sleep(5 * time.Millisecond)
	}

	gt.Stop()
	stopped := gt.GetTickCount()
	time.Sleep(20 * time.Millisecond)
	if gt.GetTickCount() != stopped {
		t.Error("Ticks advanced after Stop")
	}

	obsMu.Lock()
	defer obsMu.Unlock()
	if uint64(observed) != stopped {
		t.Errorf("OnTick observed %d ticks, expected %d", observed, stopped)
	}
}

type slowSystem struct{ d time.Duration }

func (s slowSystem) Update(time.Duration) error { time.Sleep(s.d); return nil }
func (s slowSystem) GetName() string            { return "slow" }
func (s slowSystem) GetPriority() int           { return 0 }

func TestBottlenecksAndHealth(t *testing.T) {
	gt := NewGameTicker(context.Background(), 100, quietLogger()) // тик 10ms, порог системы 2.5ms
	gt.RegisterSystem(slowSystem{d: 6 * time.Millisecond})
	gt.RegisterSystem(deltaSystem(func(time.Duration) {}))

	if report := gt.CheckHealth(); report.Status != StatusHealthy {
		t.Errorf("Fresh ticker should be healthy, got %+v", report)
	}

	start := time.Now()
	for i := 0; i < 3; i++ {
		gt.Tick(start.Add(time.Duration(i) * gt.TickDuration()))
	}

	bottlenecks := gt.FindBottlenecks()
	if len(bottlenecks) != 1 || bottlenecks[0].System != "slow" {
		t.Fatalf("Expected only the slow system, got %+v", bottlenecks)
	}
	if bottlenecks[0].Severity != StatusCritical {
		t.Errorf("6ms of a 10ms tick should be critical, got %s", bottlenecks[0].Severity)
	}

	if report := gt.CheckHealth(); report.Status != StatusWarning || len(report.Issues) != 1 {
		t.Errorf("Slow ticks should produce a warning, got %+v", report)
	}
}
