package attribution_test

import (
	"reflect"
	"testing"

	"github.com/jonesrussell/cro-engine/internal/attribution"
)

func TestExtract_AllParams(t *testing.T) {
	rawURL := "https://example.com/pricing?utm_source=newsletter&utm_medium=email" +
		"&utm_campaign=spring&utm_term=cro&utm_content=footer"

	attr := attribution.Extract(rawURL, "https://mail.example.com")

	assertParam(t, "source", attr.Source, "newsletter")
	assertParam(t, "medium", attr.Medium, "email")
	assertParam(t, "campaign", attr.Campaign, "spring")
	assertParam(t, "term", attr.Term, "cro")
	assertParam(t, "content", attr.Content, "footer")

	if attr.Referrer != "https://mail.example.com" {
		t.Errorf("referrer: got %q", attr.Referrer)
	}
}

func TestExtract_AbsentParamsStayAbsent(t *testing.T) {
	attr := attribution.Extract("https://example.com/?utm_source=google", "")

	assertParam(t, "source", attr.Source, "google")

	if attr.Medium != nil {
		t.Errorf("medium: expected absent, got %q", *attr.Medium)
	}
	if attr.Campaign != nil {
		t.Errorf("campaign: expected absent, got %q", *attr.Campaign)
	}
}

func TestExtract_PresentButEmptyIsNotAbsent(t *testing.T) {
	attr := attribution.Extract("https://example.com/?utm_source=", "")

	if attr.Source == nil {
		t.Fatal("expected utm_source to be present")
	}
	if *attr.Source != "" {
		t.Errorf("expected empty source value, got %q", *attr.Source)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	rawURL := "https://example.com/?utm_source=x&utm_campaign=y"

	first := attribution.Extract(rawURL, "ref")
	second := attribution.Extract(rawURL, "ref")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestExtract_MalformedURL(t *testing.T) {
	attr := attribution.Extract("http://%zz%invalid", "")

	if attr.Source != nil || attr.Medium != nil || attr.Campaign != nil ||
		attr.Term != nil || attr.Content != nil {
		t.Errorf("expected all campaign fields absent for malformed URL, got %+v", attr)
	}
}

func TestExtract_NoParams(t *testing.T) {
	attr := attribution.Extract("https://example.com/about", "")

	if !attr.IsZero() {
		t.Errorf("expected zero attribution, got %+v", attr)
	}
}

func assertParam(t *testing.T, name string, got *string, want string) {
	t.Helper()

	if got == nil {
		t.Fatalf("%s: expected %q, got absent", name, want)
	}
	if *got != want {
		t.Errorf("%s: got %q, want %q", name, *got, want)
	}
}
