package learner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/observastack/intel-engine/internal/knowledge"
	"github.com/observastack/intel-engine/internal/models"
)

// Model is the durable training artifact. It is advisory: a fresh process may
// start with empty learner state and rebuild it by replaying training calls.
type Model struct {
	Baselines         map[string]models.Baseline        `json:"baselines"`
	LearnedPatterns   map[string]models.LearnedPattern  `json:"learned_patterns"`
	IncidentHistory   []models.Incident                 `json:"incident_history"`
	DomainKnowledge   knowledge.DomainKnowledge         `json:"domain_knowledge"`
	TrainingTimestamp time.Time                         `json:"training_timestamp"`
	TrainingStats     models.TrainingStats              `json:"training_stats"`
}

// Snapshot captures the current learner state as a persistable model.
func (s *State) Snapshot(domain knowledge.DomainKnowledge, stats models.TrainingStats) Model {
	return Model{
		Baselines:         s.Baselines(),
		LearnedPatterns:   s.Patterns(),
		IncidentHistory:   s.Incidents(),
		DomainKnowledge:   domain,
		TrainingTimestamp: time.Now().UTC(),
		TrainingStats:     stats,
	}
}

// SaveModel writes the model JSON document, creating parent directories.
func SaveModel(path string, model Model) error {
	if path == "" {
		return fmt.Errorf("model path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// LoadModel reads a previously saved model. A missing file is not an error;
// the second return reports whether a model was found.
func LoadModel(path string) (Model, bool, error) {
	var model Model
	if path == "" {
		return model, false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model, false, nil
		}
		return model, false, fmt.Errorf("read model: %w", err)
	}
	if err := json.Unmarshal(data, &model); err != nil {
		return model, false, fmt.Errorf("parse model %s: %w", path, err)
	}
	return model, true, nil
}
