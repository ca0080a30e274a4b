// Package scoring computes the sales-readiness score for a submitted lead.
package scoring

import (
	"net/mail"
	"strings"

	"github.com/jonesrussell/cro-engine/internal/domain"
)

// MaxScore is the hard ceiling on a lead score. The score is consumed
// downstream as a percentage-like signal, so the clamp is an invariant.
const MaxScore = 100

// Bucket point values.
const (
	pointsEmailPersonal = 5
	pointsEmailBusiness = 15
	pointsCompanyName   = 10
	pointsPhone         = 10

	pointsPerChallenge = 3
	challengeBucketCap = 15
)

// personalMailDomains are common personal-mail providers. An email whose
// domain is absent from this list counts as business-grade.
var personalMailDomains = map[string]bool{
	"gmail.com":      true,
	"yahoo.com":      true,
	"hotmail.com":    true,
	"outlook.com":    true,
	"aol.com":        true,
	"icloud.com":     true,
	"me.com":         true,
	"live.com":       true,
	"msn.com":        true,
	"protonmail.com": true,
	"proton.me":      true,
	"mail.com":       true,
	"gmx.com":        true,
	"yandex.com":     true,
}

// companySizePoints maps company-size tiers to their score contribution.
var companySizePoints = map[domain.CompanySize]int{
	domain.CompanySolo:       2,
	domain.CompanySmall:      5,
	domain.CompanyMedium:     10,
	domain.CompanyLarge:      15,
	domain.CompanyEnterprise: 20,
}

// urgencyPoints maps buying-timeline tiers to their score contribution.
var urgencyPoints = map[domain.Urgency]int{
	domain.UrgencyImmediate:   20,
	domain.UrgencyThisQuarter: 12,
	domain.UrgencyThisYear:    6,
	domain.UrgencyExploring:   2,
}

// industryPoints maps industry verticals to their score contribution.
var industryPoints = map[domain.Industry]int{
	domain.IndustryFinance:       10,
	domain.IndustryHealthcare:    10,
	domain.IndustryTechnology:    8,
	domain.IndustryRetail:        6,
	domain.IndustryManufacturing: 6,
	domain.IndustryEducation:     5,
	domain.IndustryOther:         2,
}

// Score maps lead inputs to an integer in [0, MaxScore]. It is pure and
// deterministic: no side effects, safe to call speculatively during form
// fill. Malformed emails and unknown enum values contribute zero rather
// than erroring.
func Score(in domain.LeadScoreInputs) int {
	score := emailPoints(in.Email)

	if strings.TrimSpace(in.CompanyName) != "" {
		score += pointsCompanyName
	}
	if strings.TrimSpace(in.Phone) != "" {
		score += pointsPhone
	}

	score += companySizePoints[in.CompanySize]
	score += urgencyPoints[in.Urgency]
	score += industryPoints[in.Industry]
	score += challengePoints(in.Challenges)

	if score > MaxScore {
		score = MaxScore
	}
	return score
}

// emailPoints scores the email-quality bucket: zero for malformed
// addresses, more for business-grade domains than personal ones.
func emailPoints(email string) int {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return 0
	}

	at := strings.LastIndex(addr.Address, "@")
	if at < 0 || at == len(addr.Address)-1 {
		return 0
	}

	dom := strings.ToLower(addr.Address[at+1:])
	if personalMailDomains[dom] {
		return pointsEmailPersonal
	}
	return pointsEmailBusiness
}

// challengePoints scores distinct challenges, capped independently of the
// global clamp.
func challengePoints(challenges []string) int {
	seen := make(map[string]bool, len(challenges))
	for _, c := range challenges {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			seen[c] = true
		}
	}

	points := len(seen) * pointsPerChallenge
	if points > challengeBucketCap {
		points = challengeBucketCap
	}
	return points
}
