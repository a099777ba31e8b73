package domain

import "time"

// Period selects the digest cadence.
type Period string

const (
	PeriodDaily  Period = "daily"
	PeriodWeekly Period = "weekly"
)

// Valid reports whether the period is one of the known cadences.
func (p Period) Valid() bool {
	return p == PeriodDaily || p == PeriodWeekly
}

// Label returns the human form used in email subjects.
func (p Period) Label() string {
	if p == PeriodWeekly {
		return "Weekly"
	}
	return "Daily"
}

// Article is a core entity describing one ingested news item.
// URL is the natural key; RelevanceScore is assigned by the scorer
// and stays within [0,1].
type Article struct {
	URL            string
	Title          string
	Publisher      string
	PublishedAt    time.Time
	Summary        string
	RelevanceScore float64
}

// SentStatus enumerates digest delivery milestones.
type SentStatus string

const (
	StatusPending SentStatus = "pending"
	StatusSent    SentStatus = "sent"
	StatusPrinted SentStatus = "printed"
	StatusFailed  SentStatus = "failed"
)

// Digest is a rendered brief persisted for audit and delivery tracking.
type Digest struct {
	Period     Period
	Text       string
	HTML       string
	SentStatus SentStatus
	RunAt      time.Time
}

// EmailPayload carries a fully assembled outbound message. Pure data.
type EmailPayload struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

// SendResult reports the outcome of a delivery attempt. A failed send is
// an expected operating mode (missing credentials, provider down), so it
// is modeled as data rather than an error.
type SendResult struct {
	Success   bool
	MessageID string
	Error     string
}
