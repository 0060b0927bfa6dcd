package models

type SummarizeRequest struct {
	URL        string `json:"url"`
	Transcript string `json:"transcript"`
}

// KeyMoment is one timestamped highlight. Chapter-derived moments carry
// Why == "Chapter" so the frontend can tell them apart from model output.
type KeyMoment struct {
	Time  string `json:"time"`
	Title string `json:"title"`
	Why   string `json:"why"`
}

type SummaryInsights struct {
	Summary     string      `json:"summary"`
	MustKnow    []string    `json:"must_know"`
	KeyMoments  []KeyMoment `json:"key_moments"`
	PlacesFoods []string    `json:"places_foods"`
}

type SummarizeResponse struct {
	Summary             string          `json:"summary"`
	Insights            SummaryInsights `json:"insights"`
	Transcript          string          `json:"transcript"`
	TranscriptTruncated bool            `json:"transcriptTruncated"`
	Remaining           int             `json:"remaining"`
	TranscriptSource    string          `json:"transcriptSource"`
	TranscriptError     string          `json:"transcriptError"`
}

type QuotaStatus struct {
	Remaining int `json:"remaining"`
	Limit     int `json:"limit"`
}

// ErrorResponse is the error shape every endpoint returns: a user-facing
// message plus optional diagnostics for 500s.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
