package scenario

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kingrea/tidewatch/internal/series"
)

// Load reads a scenario file and resolves its state series reference. The
// state path is interpreted relative to the scenario file's directory; a
// scenario without a state reference runs unconstrained.
func Load(path string) (Scenario, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	s, err := ParseYAML(content)
	if err != nil {
		return Scenario{}, fmt.Errorf("scenario: %s: %w", path, err)
	}
	if s.State != "" {
		statePath := s.State
		if !filepath.IsAbs(statePath) {
			statePath = filepath.Join(filepath.Dir(path), statePath)
		}
		data, err := series.LoadFile(statePath)
		if err != nil {
			return Scenario{}, err
		}
		s.Series = data
	}
	return s, nil
}
