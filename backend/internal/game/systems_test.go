package game

import (
	"context"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"solar-system/backend/internal/config"
	"solar-system/backend/internal/picking"
	"solar-system/backend/internal/session"
)

type fakeBroadcaster struct {
	snapshots []session.Snapshot
	ticks     []uint64
	focus     []session.FocusState
	cursors   []picking.Cursor
}

func (fb *fakeBroadcaster) SendSnapshot(tick uint64, snap session.Snapshot) error {
	fb.ticks = append(fb.ticks, tick)
	fb.snapshots = append(fb.snapshots, snap)
	return nil
}

func (fb *fakeBroadcaster) SendFocus(focus session.FocusState) error {
	fb.focus = append(fb.focus, focus)
	return nil
}

func (fb *fakeBroadcaster) SendCursor(cursor picking.Cursor) error {
	fb.cursors = append(fb.cursors, cursor)
	return nil
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	sess, err := session.New("game-test", session.Options{
		View:   config.DefaultViewConfig(),
		Seed:   7,
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("session.New failed: %v", err)
	}
	return sess
}

func TestSessionPipeline(t *testing.T) {
	sess := newTestSession(t)
	fb := &fakeBroadcaster{}

	gt := NewGameTicker(context.Background(), 30, quietLogger())
	RegisterSessionSystems(gt, sess, fb, 3, quietLogger())

	earth, _ := sess.Body("Earth")
	startAngle := earth.OrbitAngle

	if err := sess.Enqueue(session.Event{Kind: session.EventKeyDown, Key: "5"}); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	for i := 0; i < 6; i++ {
		gt.Tick(start.Add(time.Duration(i) * gt.TickDuration()))
	}

	if len(fb.snapshots) != 6 {
		t.Fatalf("Expected a snapshot per tick, got %d", len(fb.snapshots))
	}
	if len(fb.focus) != 1 || fb.focus[0].Body != "Jupiter" {
		t.Errorf("Expected a single Jupiter focus message, got %+v", fb.focus)
	}
	if !fb.snapshots[0].Camera.Animating {
		t.Error("Selecting a body should start the framing animation")
	}

	for i, snap := range fb.snapshots {
		tick := fb.ticks[i]
		wantAsteroids := tick == 1 || tick%3 == 0
		if got := len(snap.Asteroids) > 0; got != wantAsteroids {
			t.Errorf("Tick %d: asteroids present = %v, expected %v", tick, got, wantAsteroids)
		}
	}

	if earth.OrbitAngle <= startAngle {
		t.Errorf("Earth should advance, angle %v -> %v", startAngle, earth.OrbitAngle)
	}
}

func TestKinematicsSystemClampsStep(t *testing.T) {
	sess := newTestSession(t)
	earth, _ := sess.Body("Earth")

	ks := NewKinematicsSystem(sess)

	before := earth.OrbitAngle
	if err := ks.Update(time.Hour); err != nil {
		t.Fatal(err)
	}
	advanced := earth.OrbitAngle - before

	maxStep := config.GetTimeConfig().MaxStep.Seconds() * sess.TimeScale()
	want := earth.OrbitSpeed * maxStep
	if diff := advanced - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Expected clamped advance %v, got %v", want, advanced)
	}

	before = earth.OrbitAngle
	_ = ks.Update(-time.Second)
	if earth.OrbitAngle != before {
		t.Error("Negative delta must not move bodies")
	}
}

func TestCursorChangeIsBroadcast(t *testing.T) {
	sess := newTestSession(t)
	fb := &fakeBroadcaster{}
	bs := NewBroadcastSystem(sess, fb, 10, quietLogger())

	// Камера по умолчанию смотрит на Солнце
	sess.PointerMove(mgl64.Vec2{})
	if err := bs.Update(0); err != nil {
		t.Fatal(err)
	}
	if len(fb.cursors) != 1 || fb.cursors[0] != picking.CursorPointer {
		t.Errorf("Expected pointer cursor message, got %v", fb.cursors)
	}

	if err := bs.Update(0); err != nil {
		t.Fatal(err)
	}
	if len(fb.cursors) != 1 {
		t.Error("Unchanged cursor must not be resent")
	}
}
