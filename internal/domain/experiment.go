package domain

// ExperimentStatus is the lifecycle state of an experiment. Only running
// experiments assign variants.
type ExperimentStatus string

const (
	// StatusDraft marks an experiment that has never been started.
	StatusDraft ExperimentStatus = "draft"
	// StatusRunning marks an experiment actively assigning variants.
	StatusRunning ExperimentStatus = "running"
	// StatusPaused marks a temporarily stopped experiment.
	StatusPaused ExperimentStatus = "paused"
	// StatusCompleted marks a finished experiment.
	StatusCompleted ExperimentStatus = "completed"
)

// Variant is one alternative treatment within an experiment. Weight is a
// percentage share; weights across an experiment need not sum to exactly
// 100 (the assigner normalizes) but must be non-negative and sum to > 0.
type Variant struct {
	ID     string  `json:"id"     yaml:"id"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// RuleType discriminates what part of the visitor context a targeting rule
// inspects. Unknown types fail closed at assignment time and are rejected
// at configuration load time.
type RuleType string

const (
	RuleURL       RuleType = "url"
	RuleUTMSource RuleType = "utm_source"
	RuleDevice    RuleType = "device"
	RuleLocation  RuleType = "location"
	RuleUserAgent RuleType = "user_agent"
	RuleCustom    RuleType = "custom"
)

// RuleOperator is the comparison a targeting rule applies.
type RuleOperator string

const (
	OpEquals     RuleOperator = "equals"
	OpContains   RuleOperator = "contains"
	OpStartsWith RuleOperator = "starts_with"
	OpEndsWith   RuleOperator = "ends_with"
	OpRegex      RuleOperator = "regex"
)

// TargetingRule is a predicate gating experiment eligibility. All rules of
// an experiment must pass. Param names the context key for custom rules and
// is ignored otherwise.
type TargetingRule struct {
	Type     RuleType     `json:"type"     yaml:"type"`
	Operator RuleOperator `json:"operator" yaml:"operator"`
	Value    string       `json:"value"    yaml:"value"`
	Param    string       `json:"param,omitempty" yaml:"param,omitempty"`
}

// Experiment is an A/B test configuration. Supplied by configuration, not
// created by this service.
type Experiment struct {
	ID             string           `json:"id"              yaml:"id"`
	Name           string           `json:"name"            yaml:"name"`
	Variants       []Variant        `json:"variants"        yaml:"variants"`
	TargetingRules []TargetingRule  `json:"targeting_rules" yaml:"targeting_rules"`
	Status         ExperimentStatus `json:"status"          yaml:"status"`
}

// IsRunning reports whether the experiment may assign variants.
func (e *Experiment) IsRunning() bool {
	return e.Status == StatusRunning
}
