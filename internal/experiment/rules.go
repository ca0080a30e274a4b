// Package experiment assigns visitors to A/B experiment variants under
// targeting rules.
package experiment

import (
	"regexp"
	"strings"

	"github.com/jonesrussell/cro-engine/internal/domain"
)

// RuleContext is the visitor context targeting rules evaluate against.
type RuleContext struct {
	URL         string
	Attribution domain.Attribution
	Device      string
	Location    string
	UserAgent   string
	Custom      map[string]string
}

// evaluateRules reports whether every rule passes. An experiment with no
// rules targets everyone.
func evaluateRules(rules []domain.TargetingRule, rctx RuleContext) bool {
	for i := range rules {
		if !evaluateRule(rules[i], rctx) {
			return false
		}
	}
	return true
}

// evaluateRule checks a single rule. Unrecognized rule types and malformed
// regex patterns fail closed: the visitor is not eligible.
func evaluateRule(rule domain.TargetingRule, rctx RuleContext) bool {
	subject, ok := ruleSubject(rule, rctx)
	if !ok {
		return false
	}
	return applyOperator(rule.Operator, subject, rule.Value)
}

// ruleSubject extracts the context value a rule inspects.
func ruleSubject(rule domain.TargetingRule, rctx RuleContext) (string, bool) {
	switch rule.Type {
	case domain.RuleURL:
		return rctx.URL, true
	case domain.RuleUTMSource:
		return rctx.Attribution.SourceValue(), true
	case domain.RuleDevice:
		return rctx.Device, true
	case domain.RuleLocation:
		return rctx.Location, true
	case domain.RuleUserAgent:
		return rctx.UserAgent, true
	case domain.RuleCustom:
		return rctx.Custom[rule.Param], true
	default:
		return "", false
	}
}

// applyOperator compares subject against value. Unknown operators and
// invalid regex patterns fail closed.
func applyOperator(op domain.RuleOperator, subject, value string) bool {
	switch op {
	case domain.OpEquals:
		return subject == value
	case domain.OpContains:
		return strings.Contains(subject, value)
	case domain.OpStartsWith:
		return strings.HasPrefix(subject, value)
	case domain.OpEndsWith:
		return strings.HasSuffix(subject, value)
	case domain.OpRegex:
		re, err := regexp.Compile(value)
		if err != nil {
			return false
		}
		return re.MatchString(subject)
	default:
		return false
	}
}

// mobileHints and tabletHints are User-Agent substrings (lowercase) used to
// classify the visitor's device for device-targeted rules.
var (
	tabletHints = []string{"ipad", "tablet", "kindle", "silk"}
	mobileHints = []string{"mobile", "iphone", "android", "ipod", "windows phone"}
)

// DeviceFor classifies a User-Agent as "mobile", "tablet", or "desktop".
func DeviceFor(userAgent string) string {
	ua := strings.ToLower(userAgent)
	for _, hint := range tabletHints {
		if strings.Contains(ua, hint) {
			return "tablet"
		}
	}
	for _, hint := range mobileHints {
		if strings.Contains(ua, hint) {
			return "mobile"
		}
	}
	return "desktop"
}
