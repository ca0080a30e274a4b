package scoring_test

import (
	"testing"

	"github.com/jonesrussell/cro-engine/internal/domain"
	"github.com/jonesrussell/cro-engine/internal/scoring"
)

func TestScore_Bounds(t *testing.T) {
	inputs := []domain.LeadScoreInputs{
		{},
		{Email: "not-an-email"},
		{Email: "ceo@acme.com"},
		{
			Email:       "ceo@acme.com",
			CompanyName: "Acme",
			Phone:       "+911234567890",
			CompanySize: domain.CompanyEnterprise,
			Urgency:     domain.UrgencyImmediate,
			Industry:    domain.IndustryFinance,
			Challenges:  []string{"a", "b", "c", "d", "e", "f", "g", "h"},
		},
	}

	for i, in := range inputs {
		score := scoring.Score(in)
		if score < 0 || score > scoring.MaxScore {
			t.Errorf("input %d: score %d out of [0, %d]", i, score, scoring.MaxScore)
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	in := domain.LeadScoreInputs{
		Email:       "ceo@acme.com",
		CompanySize: domain.CompanyMedium,
		Challenges:  []string{"cost", "churn"},
	}

	first := scoring.Score(in)
	for i := 0; i < 10; i++ {
		if got := scoring.Score(in); got != first {
			t.Fatalf("score not deterministic: got %d, want %d", got, first)
		}
	}
}

func TestScore_MalformedEmailScoresZero(t *testing.T) {
	malformed := []string{"", "plainstring", "missing@", "@nodomain", "a@b@c"}

	for _, email := range malformed {
		if got := scoring.Score(domain.LeadScoreInputs{Email: email}); got != 0 {
			t.Errorf("email %q: expected 0, got %d", email, got)
		}
	}
}

func TestScore_BusinessEmailBeatsPersonal(t *testing.T) {
	personal := scoring.Score(domain.LeadScoreInputs{Email: "someone@gmail.com"})
	business := scoring.Score(domain.LeadScoreInputs{Email: "someone@acme.com"})

	if personal >= business {
		t.Errorf("expected business email to outscore personal: personal=%d business=%d",
			personal, business)
	}
	if personal == 0 {
		t.Error("well-formed personal email should still earn points")
	}
}

func TestScore_EnrichedLeadBeatsBareEmail(t *testing.T) {
	bare := scoring.Score(domain.LeadScoreInputs{Email: "ceo@acme.com"})
	enriched := scoring.Score(domain.LeadScoreInputs{
		Email:       "ceo@acme.com",
		CompanyName: "Acme",
		Phone:       "+911234567890",
		CompanySize: domain.CompanyEnterprise,
		Urgency:     domain.UrgencyImmediate,
	})

	if enriched <= bare {
		t.Errorf("expected enriched lead to outscore bare email: bare=%d enriched=%d",
			bare, enriched)
	}
}

func TestScore_ClampedAt100(t *testing.T) {
	in := domain.LeadScoreInputs{
		Email:       "ceo@acme.com",
		CompanyName: "Acme",
		Phone:       "+911234567890",
		CompanySize: domain.CompanyEnterprise,
		Urgency:     domain.UrgencyImmediate,
		Industry:    domain.IndustryFinance,
		Challenges:  []string{"a", "b", "c", "d", "e", "f"},
	}

	if got := scoring.Score(in); got != scoring.MaxScore {
		t.Errorf("expected maximal lead to clamp at %d, got %d", scoring.MaxScore, got)
	}
}

func TestScore_UnknownEnumsContributeZero(t *testing.T) {
	base := scoring.Score(domain.LeadScoreInputs{Email: "ceo@acme.com"})
	withUnknowns := scoring.Score(domain.LeadScoreInputs{
		Email:       "ceo@acme.com",
		CompanySize: "galactic",
		Urgency:     "yesterday",
		Industry:    "piracy",
	})

	if withUnknowns != base {
		t.Errorf("unknown enum values must contribute zero: base=%d got=%d", base, withUnknowns)
	}
}

func TestScore_ChallengesDeduplicatedAndCapped(t *testing.T) {
	one := scoring.Score(domain.LeadScoreInputs{
		Email:      "ceo@acme.com",
		Challenges: []string{"cost"},
	})
	duplicated := scoring.Score(domain.LeadScoreInputs{
		Email:      "ceo@acme.com",
		Challenges: []string{"cost", "cost", " Cost "},
	})

	if one != duplicated {
		t.Errorf("duplicate challenges must not add points: one=%d duplicated=%d", one, duplicated)
	}

	five := scoring.Score(domain.LeadScoreInputs{
		Email:      "ceo@acme.com",
		Challenges: []string{"a", "b", "c", "d", "e"},
	})
	ten := scoring.Score(domain.LeadScoreInputs{
		Email:      "ceo@acme.com",
		Challenges: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
	})

	if five != ten {
		t.Errorf("challenge bucket must cap: five=%d ten=%d", five, ten)
	}
}
