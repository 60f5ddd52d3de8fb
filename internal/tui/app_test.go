package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/tidewatch/internal/logstore"
	"github.com/kingrea/tidewatch/internal/sim"
)

func storeWithRun(t *testing.T) (*logstore.Store, string) {
	t.Helper()
	store, err := logstore.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	id, err := store.SaveRun("jacket-installation", 10, []sim.Entry{
		{Time: 6, Level: sim.LevelAction, Agent: "Vessel", Action: "Delay", Duration: 6},
		{Time: 10, Level: sim.LevelAction, Agent: "Vessel", Action: "LiftCargo", Duration: 4},
	})
	if err != nil {
		t.Fatalf("save run: %v", err)
	}
	return store, id
}

func TestNewAppOpensNamedRun(t *testing.T) {
	store, id := storeWithRun(t)
	app, err := NewApp(store, id[:8])
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if app.state != stateReplay {
		t.Fatalf("state = %v, want replay", app.state)
	}
	if len(app.entries) != 2 {
		t.Fatalf("entries = %+v", app.entries)
	}
	view := app.View()
	if !strings.Contains(view, "jacket-installation") {
		t.Fatalf("view missing scenario title:\n%s", view)
	}
	if !strings.Contains(view, "LiftCargo") {
		t.Fatalf("view missing action row:\n%s", view)
	}
}

func TestNewAppRejectsUnknownRun(t *testing.T) {
	store, _ := storeWithRun(t)
	if _, err := NewApp(store, "deadbeef0000"); err == nil {
		t.Fatalf("unknown run accepted")
	}
}

func TestReplayNavigation(t *testing.T) {
	store, id := storeWithRun(t)
	app, err := NewApp(store, id)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	app = model.(*App)
	if app.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", app.cursor)
	}
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	app = model.(*App)
	if app.cursor != 1 {
		t.Fatalf("cursor moved past the last entry")
	}
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	app = model.(*App)
	if app.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", app.cursor)
	}
}

func TestVisibleWindowTracksCursor(t *testing.T) {
	cases := []struct {
		cursor, total, rows int
		start, end          int
	}{
		{cursor: 0, total: 3, rows: 10, start: 0, end: 3},
		{cursor: 0, total: 100, rows: 10, start: 0, end: 10},
		{cursor: 50, total: 100, rows: 10, start: 45, end: 55},
		{cursor: 99, total: 100, rows: 10, start: 90, end: 100},
	}
	for _, tc := range cases {
		got := visibleWindow(tc.cursor, tc.total, tc.rows)
		if got.start != tc.start || got.end != tc.end {
			t.Fatalf("visibleWindow(%d, %d, %d) = %+v", tc.cursor, tc.total, tc.rows, got)
		}
	}
}
