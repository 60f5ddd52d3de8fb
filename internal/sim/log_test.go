package sim

import (
	"errors"
	"testing"

	"github.com/kingrea/tidewatch/internal/kernel"
)

func TestSubmitLogStampsTime(t *testing.T) {
	env := New("Test Environment")
	err := env.SubmitLog(map[string]any{
		"agent":    "Vessel",
		"action":   "Transit",
		"duration": 4,
	}, LevelAction)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	logs := env.Logs()
	if len(logs) != 1 {
		t.Fatalf("logs = %+v", logs)
	}
	entry := logs[0]
	if entry.Time != 0 || entry.Level != LevelAction {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.Agent != "Vessel" || entry.Action != "Transit" || entry.Duration != 4 {
		t.Fatalf("entry = %+v", entry)
	}
}

func TestSubmitLogSchemaValidation(t *testing.T) {
	env := New("Test Environment")
	cases := []map[string]any{
		{"action": "Transit", "duration": 4},
		{"agent": "Vessel", "duration": 4},
		{"agent": "Vessel", "action": "Transit"},
		{"agent": "Vessel", "action": "Transit", "duration": "long"},
	}
	for i, payload := range cases {
		err := env.SubmitLog(payload, LevelAction)
		var missing *MissingKeysError
		if !errors.As(err, &missing) {
			t.Fatalf("case %d: error = %v, want MissingKeysError", i, err)
		}
	}
	if len(env.Logs()) != 0 {
		t.Fatalf("rejected payloads must not be written, logs = %+v", env.Logs())
	}
}

func TestSubmitLogPreservesExtras(t *testing.T) {
	env := New("Test Environment")
	err := env.SubmitLog(map[string]any{
		"agent":    "Vessel",
		"action":   "Transit",
		"duration": 4,
		"status":   "Successful",
		"cargo":    3,
	}, LevelAction)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	entry := env.Logs()[0]
	if entry.Extra["status"] != "Successful" || entry.Extra["cargo"] != 3 {
		t.Fatalf("extras = %+v", entry.Extra)
	}
}

func TestLogAccessorsCopyExtras(t *testing.T) {
	env := New("Test Environment")
	err := env.SubmitLog(map[string]any{
		"agent":    "Vessel",
		"action":   "Transit",
		"duration": 4,
		"status":   "Successful",
	}, LevelAction)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	env.Logs()[0].Extra["status"] = "Corrupted"
	env.Actions()[0].Extra["status"] = "Corrupted"
	if got := env.Logs()[0].Extra["status"]; got != "Successful" {
		t.Fatalf("stored extra mutated through accessor: %v", got)
	}
	if got := env.Actions()[0].Extra["status"]; got != "Successful" {
		t.Fatalf("stored extra mutated through accessor: %v", got)
	}
}

func TestDebugLogsSkipSchemaChecks(t *testing.T) {
	env := New("Test Environment")
	if err := env.SubmitLog(map[string]any{"status": "Starting"}, LevelDebug); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(env.Logs()) != 1 {
		t.Fatalf("logs = %+v", env.Logs())
	}
	if len(env.Actions()) != 0 {
		t.Fatalf("debug entries must not appear in Actions")
	}
}

func TestActionsFilterAndOrdering(t *testing.T) {
	env := New("Test Environment")
	agent := NewAgent("Test Agent")
	if err := env.Register(agent); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := env.Schedule(agent, func(p *kernel.Proc) error {
		if err := agent.SubmitDebugLog(map[string]any{"status": "Starting"}); err != nil {
			return err
		}
		if err := agent.Pause(p, 10); err != nil {
			return err
		}
		return agent.Do(p, TaskSpec{Name: "Perform", Duration: 5})
	}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := env.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	logs := env.Logs()
	actions := env.Actions()
	if len(logs) != 3 || len(actions) != 2 {
		t.Fatalf("logs = %d, actions = %d", len(logs), len(actions))
	}
	for i := 1; i < len(logs); i++ {
		if logs[i].Time < logs[i-1].Time {
			t.Fatalf("log times decreased: %v then %v", logs[i-1].Time, logs[i].Time)
		}
	}
	if actions[0].Action != "Delay" || actions[0].Time != 10 {
		t.Fatalf("first action = %+v", actions[0])
	}
	if actions[1].Action != "Perform" || actions[1].Time != 15 {
		t.Fatalf("second action = %+v", actions[1])
	}
}
