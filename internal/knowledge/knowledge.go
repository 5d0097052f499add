package knowledge

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/observastack/intel-engine/internal/models"
)

// Base holds the static, hand-curated observability expertise: failure
// signatures, error-type playbooks, per-metric threshold bands and generic
// solution lists. Pure read-only lookup once constructed.
type Base struct {
	signatures []models.Signature
	playbooks  map[string]Playbook
	thresholds map[string]ThresholdBands
	solutions  map[string][]string
	domain     DomainKnowledge
}

// Playbook is the remediation guidance for a well-known error type.
type Playbook struct {
	ImmediateActions []string `yaml:"immediate_actions" json:"immediate_actions"`
	Investigation    []string `yaml:"investigation" json:"investigation"`
	Prevention       []string `yaml:"prevention" json:"prevention"`
}

// ThresholdBands names the severity bands for one metric.
type ThresholdBands map[string]string

// DomainKnowledge captures architecture/technology/database failure lore
// persisted alongside the trained model.
type DomainKnowledge struct {
	ArchitecturePatterns map[string]ArchitectureProfile `yaml:"architecture_patterns" json:"architecture_patterns"`
	TechnologyPatterns   map[string]TechnologyProfile   `yaml:"technology_patterns" json:"technology_patterns"`
	DatabasePatterns     map[string]TechnologyProfile   `yaml:"database_patterns" json:"database_patterns"`
}

// ArchitectureProfile lists issues and monitoring focus for an architecture style.
type ArchitectureProfile struct {
	CommonIssues    []string `yaml:"common_issues" json:"common_issues"`
	MonitoringFocus []string `yaml:"monitoring_focus" json:"monitoring_focus"`
}

// TechnologyProfile lists issues and remediations for a technology.
type TechnologyProfile struct {
	CommonIssues []string `yaml:"common_issues" json:"common_issues"`
	Solutions    []string `yaml:"solutions" json:"solutions"`
}

// New constructs the knowledge base from the embedded catalog. It never fails.
func New() *Base {
	return &Base{
		signatures: builtinSignatures(),
		playbooks:  builtinPlaybooks(),
		thresholds: builtinThresholds(),
		solutions:  builtinSolutions(),
		domain:     builtinDomainKnowledge(),
	}
}

// catalogFile is the YAML shape of an external signature catalog override.
type catalogFile struct {
	Signatures []catalogSignature `yaml:"signatures"`
}

type catalogSignature struct {
	Name       string            `yaml:"name"`
	Symptoms   []string          `yaml:"symptoms"`
	Triggers   map[string]string `yaml:"triggers"`
	RootCause  string            `yaml:"root_cause"`
	Solutions  []string          `yaml:"solutions"`
	Prevention []string          `yaml:"prevention"`
	Confidence float64           `yaml:"confidence"`
}

// NewFromFile loads a signature catalog override from a YAML file. A missing
// file falls back to the embedded catalog; a malformed file fails fast so the
// process never starts with a silently degraded catalog. Individual condition
// strings that fail to parse are kept as never-satisfied conditions.
func NewFromFile(path string) (*Base, error) {
	base := New()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}

	signatures := make([]models.Signature, 0, len(file.Signatures))
	for _, entry := range file.Signatures {
		if entry.Name == "" {
			return nil, fmt.Errorf("catalog %s: signature without a name", path)
		}
		if entry.Confidence < 0 || entry.Confidence > 1 {
			return nil, fmt.Errorf("catalog %s: signature %s confidence %.2f outside [0,1]", path, entry.Name, entry.Confidence)
		}
		signatures = append(signatures, models.Signature{
			Name:       entry.Name,
			Symptoms:   entry.Symptoms,
			Triggers:   parseTriggers(entry.Triggers),
			RootCause:  entry.RootCause,
			Solutions:  entry.Solutions,
			Prevention: entry.Prevention,
			Confidence: entry.Confidence,
		})
	}

	if len(signatures) > 0 {
		base.signatures = signatures
	}
	return base, nil
}

// Signatures returns the static failure signatures in catalog order.
func (b *Base) Signatures() []models.Signature {
	return b.signatures
}

// PlaybookFor returns the remediation playbook for a known error type.
func (b *Base) PlaybookFor(errorType string) (Playbook, bool) {
	pb, ok := b.playbooks[errorType]
	return pb, ok
}

// ThresholdBandsFor returns the named severity bands for a metric.
func (b *Base) ThresholdBandsFor(metric string) (ThresholdBands, bool) {
	bands, ok := b.thresholds[metric]
	return bands, ok
}

// SolutionsFor returns the generic solution list for a symptom category.
func (b *Base) SolutionsFor(symptom string) []string {
	return b.solutions[symptom]
}

// Domain returns the curated domain knowledge catalog.
func (b *Base) Domain() DomainKnowledge {
	return b.domain
}

func parseTriggers(raw map[string]string) []models.Trigger {
	triggers := make([]models.Trigger, 0, len(raw))
	for name, condition := range raw {
		triggers = append(triggers, models.Trigger{
			Name:      name,
			Condition: models.ParseCondition(condition),
		})
	}
	return triggers
}
