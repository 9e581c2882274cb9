package domain

// ResultRow is one option's aggregated standing within its category.
type ResultRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Percent int    `json:"percent"`
}

// AggregateResult is the derived, per-category view of vote counts:
// every known option as a percentage-annotated row, sorted by count
// descending. Recomputed from raw votes on every read.
type AggregateResult struct {
	Total int         `json:"total"`
	Rows  []ResultRow `json:"rows"`
}

// OptionsResponse is the body of GET /api/options.
type OptionsResponse struct {
	Destinations []Option `json:"destinations"`
	Activities   []Option `json:"activities"`
}

// ResultsResponse is the body of GET /api/results.
type ResultsResponse struct {
	Destination AggregateResult `json:"destination"`
	Activity    AggregateResult `json:"activity"`
}
