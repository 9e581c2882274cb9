package domain

// Vote is a raw vote row as stored in the record store. Votes are
// written once and never mutated or deleted by the service.
type Vote struct {
	ID        string   `json:"id"`
	Category  Category `json:"category"`
	OptionID  string   `json:"optionId"`
	DeviceID  string   `json:"deviceId"`
	VoterName string   `json:"voterName,omitempty"`
}

// VoteRequest is the body of POST /api/vote. At least one of
// Destination/Activity must be present.
type VoteRequest struct {
	DeviceID    string     `json:"deviceId"`
	Destination *OptionRef `json:"destination,omitempty"`
	Activity    *OptionRef `json:"activity,omitempty"`
	VoterName   string     `json:"voterName,omitempty"`
}

// Ref returns the option reference for the given category, nil when
// the category is absent from the request.
func (r *VoteRequest) Ref(category Category) *OptionRef {
	if category == CategoryActivity {
		return r.Activity
	}
	return r.Destination
}

// VoteResponse is the body returned on a successful submission.
// Warnings carries one human-readable entry per category that was
// skipped as a duplicate; it is empty, never null, when everything
// was recorded.
type VoteResponse struct {
	OK       bool     `json:"ok"`
	Warnings []string `json:"warnings"`
}
