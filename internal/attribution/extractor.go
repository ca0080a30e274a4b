// Package attribution derives marketing attribution from navigation context.
package attribution

import (
	"net/url"

	"github.com/jonesrussell/cro-engine/internal/domain"
)

// Recognized campaign query parameters.
const (
	paramSource   = "utm_source"
	paramMedium   = "utm_medium"
	paramCampaign = "utm_campaign"
	paramTerm     = "utm_term"
	paramContent  = "utm_content"
)

// Extract parses campaign parameters out of a landing URL into an
// Attribution. Parameters absent from the URL stay nil so consumers can
// tell "not provided" from "provided but empty". Extraction is pure and
// idempotent: the same inputs always produce the same value. A malformed
// URL yields an Attribution with all campaign fields absent.
func Extract(rawURL, referrer string) domain.Attribution {
	attr := domain.Attribution{Referrer: referrer}

	u, err := url.Parse(rawURL)
	if err != nil {
		return attr
	}

	values := u.Query()
	attr.Source = paramValue(values, paramSource)
	attr.Medium = paramValue(values, paramMedium)
	attr.Campaign = paramValue(values, paramCampaign)
	attr.Term = paramValue(values, paramTerm)
	attr.Content = paramValue(values, paramContent)

	return attr
}

// paramValue returns a pointer to the parameter's first value, or nil when
// the parameter is not present at all.
func paramValue(values url.Values, key string) *string {
	if !values.Has(key) {
		return nil
	}
	v := values.Get(key)
	return &v
}
