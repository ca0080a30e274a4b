package experiment

import (
	"testing"

	"github.com/jonesrussell/cro-engine/internal/domain"
)

func TestEvaluateRule_Operators(t *testing.T) {
	rctx := RuleContext{URL: "https://example.com/pricing"}

	cases := []struct {
		name string
		op   domain.RuleOperator
		val  string
		want bool
	}{
		{"equals match", domain.OpEquals, "https://example.com/pricing", true},
		{"equals miss", domain.OpEquals, "https://example.com/", false},
		{"contains match", domain.OpContains, "/pricing", true},
		{"contains miss", domain.OpContains, "/blog", false},
		{"starts_with match", domain.OpStartsWith, "https://example.com", true},
		{"starts_with miss", domain.OpStartsWith, "http://other", false},
		{"ends_with match", domain.OpEndsWith, "/pricing", true},
		{"ends_with miss", domain.OpEndsWith, "/checkout", false},
		{"regex match", domain.OpRegex, `/pricing$`, true},
		{"regex miss", domain.OpRegex, `^ftp://`, false},
		{"regex malformed fails closed", domain.OpRegex, `(`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := domain.TargetingRule{Type: domain.RuleURL, Operator: tc.op, Value: tc.val}
			if got := evaluateRule(rule, rctx); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateRule_CustomParam(t *testing.T) {
	rctx := RuleContext{Custom: map[string]string{"plan": "enterprise"}}

	rule := domain.TargetingRule{
		Type:     domain.RuleCustom,
		Operator: domain.OpEquals,
		Value:    "enterprise",
		Param:    "plan",
	}
	if !evaluateRule(rule, rctx) {
		t.Error("expected custom rule to match context value")
	}

	rule.Param = "tier"
	if evaluateRule(rule, rctx) {
		t.Error("expected custom rule to miss an absent context key")
	}
}

func TestEvaluateRules_EmptyTargetsEveryone(t *testing.T) {
	if !evaluateRules(nil, RuleContext{}) {
		t.Error("an experiment with no rules must target everyone")
	}
}

func TestDeviceFor(t *testing.T) {
	cases := []struct {
		ua   string
		want string
	}{
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148", "mobile"},
		{"Mozilla/5.0 (Linux; Android 14; Pixel 8) Mobile Safari/537.36", "mobile"},
		{"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)", "tablet"},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", "desktop"},
		{"", "desktop"},
	}

	for _, tc := range cases {
		if got := DeviceFor(tc.ua); got != tc.want {
			t.Errorf("DeviceFor(%q): got %q, want %q", tc.ua, got, tc.want)
		}
	}
}
