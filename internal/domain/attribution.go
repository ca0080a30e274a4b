package domain

// Attribution is the marketing source and campaign associated with a visitor
// session, derived from the landing URL and referrer of a navigation.
//
// The campaign fields are pointers so that a parameter absent from the URL
// can be told apart from one that was present but empty.
type Attribution struct {
	Source   *string `json:"source,omitempty"`
	Medium   *string `json:"medium,omitempty"`
	Campaign *string `json:"campaign,omitempty"`
	Term     *string `json:"term,omitempty"`
	Content  *string `json:"content,omitempty"`
	Referrer string  `json:"referrer,omitempty"`
}

// IsZero reports whether no attribution data was captured.
func (a Attribution) IsZero() bool {
	return a.Source == nil && a.Medium == nil && a.Campaign == nil &&
		a.Term == nil && a.Content == nil && a.Referrer == ""
}

// SourceValue returns the utm_source value, or "" when absent.
func (a Attribution) SourceValue() string {
	if a.Source == nil {
		return ""
	}
	return *a.Source
}
