package sim

// Level classifies log entries.
type Level string

const (
	LevelAction Level = "ACTION"
	LevelDebug  Level = "DEBUG"
	LevelInfo   Level = "INFO"
)

// Required payload keys for LevelAction submissions.
var actionRequiredKeys = []string{"action", "agent", "duration"}

// Entry is one immutable record of the simulation log. Time is the simulated
// instant at the moment of submission; entries are append-ordered, so times
// never decrease across the log.
type Entry struct {
	Time     float64
	Level    Level
	Agent    string
	Action   string
	Duration float64
	Extra    map[string]any
}

// SubmitLog validates and appends a log entry stamped with the current
// simulated instant. ACTION payloads must carry agent, action, and a numeric
// duration; anything else in the payload is preserved verbatim in Extra.
func (e *Environment) SubmitLog(payload map[string]any, level Level) error {
	entry := Entry{
		Time:  e.Now(),
		Level: level,
	}
	extra := make(map[string]any)
	var missing []string
	for key, value := range payload {
		switch key {
		case "agent":
			if s, ok := value.(string); ok {
				entry.Agent = s
				continue
			}
		case "action":
			if s, ok := value.(string); ok {
				entry.Action = s
				continue
			}
		case "duration":
			if d, ok := asFloat(value); ok {
				entry.Duration = d
				continue
			}
		}
		extra[key] = value
	}
	if level == LevelAction {
		for _, key := range actionRequiredKeys {
			switch key {
			case "agent":
				if entry.Agent == "" {
					missing = append(missing, key)
				}
			case "action":
				if entry.Action == "" {
					missing = append(missing, key)
				}
			case "duration":
				if _, ok := payload[key]; !ok {
					missing = append(missing, key)
				} else if _, ok := asFloat(payload[key]); !ok {
					missing = append(missing, key)
				}
			}
		}
	}
	if len(missing) > 0 {
		return &MissingKeysError{Payload: payload, Missing: missing}
	}
	if len(extra) > 0 {
		entry.Extra = extra
	}
	e.logs = append(e.logs, entry)
	return nil
}

// Logs returns every entry submitted so far, in append order. Entries are
// copied, Extra maps included, so callers cannot mutate the stored log.
func (e *Environment) Logs() []Entry {
	logs := make([]Entry, 0, len(e.logs))
	for _, entry := range e.logs {
		logs = append(logs, cloneEntry(entry))
	}
	return logs
}

// Actions returns the ACTION-level entries in append order.
func (e *Environment) Actions() []Entry {
	var actions []Entry
	for _, entry := range e.logs {
		if entry.Level == LevelAction {
			actions = append(actions, cloneEntry(entry))
		}
	}
	return actions
}

func cloneEntry(entry Entry) Entry {
	if entry.Extra == nil {
		return entry
	}
	extra := make(map[string]any, len(entry.Extra))
	for key, value := range entry.Extra {
		extra[key] = value
	}
	entry.Extra = extra
	return entry
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
