package experiment

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/jonesrussell/cro-engine/internal/domain"
)

// ConfigError reports an invalid experiment definition. Configuration
// problems surface here, at load time, so that per-visitor assignment can
// stay fail-silent.
type ConfigError struct {
	ExperimentID string
	Field        string
	Message      string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("experiment %q: %s: %s", e.ExperimentID, e.Field, e.Message)
}

// validStatuses are the recognized experiment lifecycle states.
var validStatuses = map[domain.ExperimentStatus]bool{
	domain.StatusDraft:     true,
	domain.StatusRunning:   true,
	domain.StatusPaused:    true,
	domain.StatusCompleted: true,
}

var validRuleTypes = map[domain.RuleType]bool{
	domain.RuleURL:       true,
	domain.RuleUTMSource: true,
	domain.RuleDevice:    true,
	domain.RuleLocation:  true,
	domain.RuleUserAgent: true,
	domain.RuleCustom:    true,
}

var validOperators = map[domain.RuleOperator]bool{
	domain.OpEquals:     true,
	domain.OpContains:   true,
	domain.OpStartsWith: true,
	domain.OpEndsWith:   true,
	domain.OpRegex:      true,
}

// Registry holds the validated experiment configurations for the process
// lifetime. Read-only after load.
type Registry struct {
	byID  map[string]*domain.Experiment
	order []string
}

// experimentsFile is the YAML layout of the experiment definition file.
type experimentsFile struct {
	Experiments []domain.Experiment `yaml:"experiments"`
}

// LoadRegistry reads and validates the experiment definition file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read experiments file %s: %w", path, err)
	}

	var file experimentsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse experiments file: %w", err)
	}

	return NewRegistry(file.Experiments)
}

// NewRegistry validates the given experiments and builds a registry.
func NewRegistry(experiments []domain.Experiment) (*Registry, error) {
	r := &Registry{byID: make(map[string]*domain.Experiment, len(experiments))}

	for i := range experiments {
		exp := experiments[i]
		if err := validateExperiment(&exp); err != nil {
			return nil, err
		}
		if _, dup := r.byID[exp.ID]; dup {
			return nil, &ConfigError{ExperimentID: exp.ID, Field: "id", Message: "duplicate experiment id"}
		}
		r.byID[exp.ID] = &exp
		r.order = append(r.order, exp.ID)
	}

	return r, nil
}

// Get returns the experiment with the given id.
func (r *Registry) Get(id string) (*domain.Experiment, bool) {
	exp, ok := r.byID[id]
	return exp, ok
}

// All returns the experiments in definition order.
func (r *Registry) All() []*domain.Experiment {
	out := make([]*domain.Experiment, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of configured experiments.
func (r *Registry) Len() int {
	return len(r.byID)
}

// validateExperiment enforces the configuration invariants: an id and at
// least one variant, non-negative weights summing above zero, a known
// status, and targeting rules with known types, known operators, and
// compilable regex patterns.
func validateExperiment(exp *domain.Experiment) error {
	if exp.ID == "" {
		return &ConfigError{ExperimentID: exp.ID, Field: "id", Message: "is required"}
	}
	if len(exp.Variants) == 0 {
		return &ConfigError{ExperimentID: exp.ID, Field: "variants", Message: "at least one variant is required"}
	}

	var total float64
	seen := make(map[string]bool, len(exp.Variants))
	for i := range exp.Variants {
		v := exp.Variants[i]
		if v.ID == "" {
			return &ConfigError{ExperimentID: exp.ID, Field: fmt.Sprintf("variants[%d].id", i), Message: "is required"}
		}
		if seen[v.ID] {
			return &ConfigError{ExperimentID: exp.ID, Field: fmt.Sprintf("variants[%d].id", i), Message: "duplicate variant id"}
		}
		seen[v.ID] = true
		if v.Weight < 0 {
			return &ConfigError{ExperimentID: exp.ID, Field: fmt.Sprintf("variants[%d].weight", i), Message: "must not be negative"}
		}
		total += v.Weight
	}
	if total <= 0 {
		return &ConfigError{ExperimentID: exp.ID, Field: "variants", Message: "weights must sum to more than zero"}
	}

	if !validStatuses[exp.Status] {
		return &ConfigError{ExperimentID: exp.ID, Field: "status",
			Message: `must be one of: "draft", "running", "paused", "completed"`}
	}

	for i := range exp.TargetingRules {
		if err := validateRule(exp.ID, i, exp.TargetingRules[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateRule(expID string, i int, rule domain.TargetingRule) error {
	field := fmt.Sprintf("targeting_rules[%d]", i)
	if !validRuleTypes[rule.Type] {
		return &ConfigError{ExperimentID: expID, Field: field + ".type",
			Message: fmt.Sprintf("unknown rule type %q", rule.Type)}
	}
	if !validOperators[rule.Operator] {
		return &ConfigError{ExperimentID: expID, Field: field + ".operator",
			Message: fmt.Sprintf("unknown operator %q", rule.Operator)}
	}
	if rule.Operator == domain.OpRegex {
		if _, err := regexp.Compile(rule.Value); err != nil {
			return &ConfigError{ExperimentID: expID, Field: field + ".value",
				Message: fmt.Sprintf("invalid regex: %v", err)}
		}
	}
	if rule.Type == domain.RuleCustom && rule.Param == "" {
		return &ConfigError{ExperimentID: expID, Field: field + ".param",
			Message: "is required for custom rules"}
	}
	return nil
}
