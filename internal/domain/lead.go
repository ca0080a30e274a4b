package domain

// CompanySize buckets a lead's company headcount.
type CompanySize string

// Recognized company sizes. Anything else scores zero.
const (
	CompanySolo       CompanySize = "solo"
	CompanySmall      CompanySize = "small"
	CompanyMedium     CompanySize = "medium"
	CompanyLarge      CompanySize = "large"
	CompanyEnterprise CompanySize = "enterprise"
)

// Urgency is a lead's self-reported buying timeline.
type Urgency string

// Recognized urgency tiers. Anything else scores zero.
const (
	UrgencyImmediate   Urgency = "immediate"
	UrgencyThisQuarter Urgency = "this_quarter"
	UrgencyThisYear    Urgency = "this_year"
	UrgencyExploring   Urgency = "exploring"
)

// Industry is a lead's self-reported industry vertical.
type Industry string

// Recognized industries. Anything else scores zero.
const (
	IndustryFinance       Industry = "finance"
	IndustryHealthcare    Industry = "healthcare"
	IndustryTechnology    Industry = "technology"
	IndustryRetail        Industry = "retail"
	IndustryManufacturing Industry = "manufacturing"
	IndustryEducation     Industry = "education"
	IndustryOther         Industry = "other"
)

// LeadScoreInputs carries the form and session fields a submitted lead is
// scored on. Constructed per submission and consumed by the scorer; not
// persisted. Only Email is required.
type LeadScoreInputs struct {
	Email       string      `json:"email"`
	CompanyName string      `json:"company_name,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	CompanySize CompanySize `json:"company_size,omitempty"`
	Urgency     Urgency     `json:"urgency,omitempty"`
	Industry    Industry    `json:"industry,omitempty"`

	// Challenges is caller-supplied and may contain duplicates; the scorer
	// deduplicates before counting.
	Challenges []string `json:"challenges,omitempty"`
}
