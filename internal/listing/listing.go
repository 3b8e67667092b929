// Package listing holds the domain records produced by one scout run.
// Nothing here is persisted by default; records live for the run only.
package listing

import "strings"

// Listing is a single classifieds ad scraped from a search result.
// Err is set when the detail page could not be fetched; such listings are
// still counted and reported, but never evaluated.
type Listing struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Price       string `json:"price,omitempty"`
	Description string `json:"description,omitempty"`
	Err         string `json:"error,omitempty"`
}

// Evaluable reports whether the listing has any text worth sending to the
// evaluator.
func (l Listing) Evaluable() bool {
	return l.Err == "" && (strings.TrimSpace(l.Title) != "" || strings.TrimSpace(l.Description) != "")
}

// Verdict is the evaluator's decision for one (listing, product) pair.
type Verdict struct {
	IsMatch    bool   `json:"is_match"`
	Confidence string `json:"confidence" validate:"required,oneof=high medium low"`
	Reason     string `json:"reason,omitempty"`
}

// Evaluated pairs a listing with its verdict. Verdict is nil when evaluation
// was skipped (--no-eval or an unevaluable listing).
type Evaluated struct {
	Listing Listing
	Verdict *Verdict
}

// Matched reports whether the evaluator accepted the listing. With no verdict
// present every fetched listing counts as a match (the --no-eval contract).
func (e Evaluated) Matched() bool {
	if e.Verdict == nil {
		return true
	}
	return e.Verdict.IsMatch
}
