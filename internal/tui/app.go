// Package tui is the replay viewer for stored simulation runs. It follows
// The Elm Architecture via bubbletea: pick a run from the list, then scrub
// through its action log entry by entry with the simulated clock on screen.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/tidewatch/internal/logstore"
	"github.com/kingrea/tidewatch/internal/sim"
)

// appState represents which screen the viewer is on.
type appState int

const (
	stateRunSelect appState = iota // run picker
	stateReplay                    // stepping through one run's log
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	clockStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	delayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	actionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// runItem implements list.Item for the run picker.
type runItem struct {
	run logstore.Run
}

func (i runItem) Title() string {
	return fmt.Sprintf("%s · %s", i.run.Scenario, shortID(i.run.ID))
}

func (i runItem) Description() string {
	return fmt.Sprintf("%d entries · %.0f simulated units · %s",
		i.run.Entries, i.run.Elapsed, i.run.CreatedAt.Format("2006-01-02 15:04"))
}

func (i runItem) FilterValue() string { return i.run.Scenario }

// App is the bubbletea model for the replay viewer.
type App struct {
	state   appState
	store   *logstore.Store
	picker  list.Model
	run     logstore.Run
	entries []sim.Entry
	cursor  int
	width   int
	height  int
	err     error
}

// NewApp builds the viewer over an open log store. When runID is non-empty
// the picker is skipped and the first run matching that prefix replays
// immediately.
func NewApp(store *logstore.Store, runID string) (*App, error) {
	runs, err := store.ListRuns()
	if err != nil {
		return nil, err
	}
	items := make([]list.Item, 0, len(runs))
	for _, run := range runs {
		items = append(items, runItem{run: run})
	}
	picker := list.New(items, list.NewDefaultDelegate(), 0, 0)
	picker.Title = "tidewatch replays"
	picker.SetShowStatusBar(false)
	picker.SetFilteringEnabled(false)

	app := &App{state: stateRunSelect, store: store, picker: picker}
	if runID != "" {
		for _, run := range runs {
			if run.ID == runID || strings.HasPrefix(run.ID, runID) {
				if err := app.openRun(run); err != nil {
					return nil, err
				}
				break
			}
		}
		if app.state != stateReplay {
			return nil, fmt.Errorf("tui: no stored run matches %q", runID)
		}
	}
	return app, nil
}

func (a *App) openRun(run logstore.Run) error {
	entries, err := a.store.Entries(run.ID)
	if err != nil {
		return err
	}
	a.run = run
	a.entries = entries
	a.cursor = 0
	a.state = stateReplay
	return nil
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.picker.SetSize(msg.Width, msg.Height-2)
		return a, nil
	case tea.KeyMsg:
		switch a.state {
		case stateRunSelect:
			return a.updateRunSelect(msg)
		case stateReplay:
			return a.updateReplay(msg)
		}
	}
	return a, nil
}

func (a *App) updateRunSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "enter":
		if item, ok := a.picker.SelectedItem().(runItem); ok {
			if err := a.openRun(item.run); err != nil {
				a.err = err
			}
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)
	return a, cmd
}

func (a *App) updateReplay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "esc":
		a.state = stateRunSelect
		return a, nil
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j", " ":
		if a.cursor < len(a.entries)-1 {
			a.cursor++
		}
	case "home", "g":
		a.cursor = 0
	case "end", "G":
		if len(a.entries) > 0 {
			a.cursor = len(a.entries) - 1
		}
	}
	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	if a.err != nil {
		return errorStyle.Render(fmt.Sprintf("error: %v", a.err)) + "\n" +
			helpStyle.Render("q to quit")
	}
	if a.state == stateRunSelect {
		return a.picker.View()
	}
	return a.replayView()
}

func (a *App) replayView() string {
	var b strings.Builder
	clock := 0.0
	if len(a.entries) > 0 {
		clock = a.entries[a.cursor].Time
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s · %s", a.run.Scenario, shortID(a.run.ID))))
	b.WriteString("  ")
	b.WriteString(clockStyle.Render(fmt.Sprintf("t = %.1f", clock)))
	b.WriteString("\n\n")

	view := visibleWindow(a.cursor, len(a.entries), a.height-6)
	for i := view.start; i < view.end; i++ {
		entry := a.entries[i]
		line := formatEntry(entry)
		if i == a.cursor {
			line = cursorStyle.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k step · g/G jump · esc back · q quit"))
	return b.String()
}

func formatEntry(entry sim.Entry) string {
	line := fmt.Sprintf("%8.1f  %-7s %-16s %-14s %6.1f",
		entry.Time, entry.Level, entry.Agent, entry.Action, entry.Duration)
	if entry.Action == "Delay" {
		return delayStyle.Render(line)
	}
	if entry.Level == sim.LevelAction {
		return actionStyle.Render(line)
	}
	return line
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type window struct {
	start, end int
}

// visibleWindow keeps the cursor inside the visible band of rows.
func visibleWindow(cursor, total, rows int) window {
	if rows < 1 {
		rows = 1
	}
	if total <= rows {
		return window{0, total}
	}
	start := cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > total {
		start = total - rows
	}
	return window{start, start + rows}
}
