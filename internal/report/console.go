// Package report renders a run's results for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"listing-scout/internal/listing"
)

// ProductResult is everything gathered for one configured product.
type ProductResult struct {
	ProductName string
	SearchTerm  string
	Listings    []listing.Evaluated
	FetchErr    error
}

// Matches returns the evaluated listings the run accepted. Listings that
// failed to fetch never match.
func (r ProductResult) Matches() []listing.Evaluated {
	var out []listing.Evaluated
	for _, e := range r.Listings {
		if e.Listing.Err == "" && e.Matched() {
			out = append(out, e)
		}
	}
	return out
}

// Render writes the per-product breakdown followed by a run summary.
func Render(w io.Writer, results []ProductResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintln(w, "FINAL RESULTS")
	fmt.Fprintln(w, strings.Repeat("=", 70))

	totalListings, totalMatches := 0, 0

	for _, r := range results {
		matches := r.Matches()
		totalListings += len(r.Listings)
		totalMatches += len(matches)

		fmt.Fprintf(w, "\n%s\n", strings.Repeat("-", 70))
		fmt.Fprintf(w, "%s\n", r.ProductName)
		fmt.Fprintf(w, "   Search: %q\n", r.SearchTerm)
		if r.FetchErr != nil {
			fmt.Fprintf(w, "   Fetch failed: %v\n", r.FetchErr)
			continue
		}
		fmt.Fprintf(w, "   Listings scraped: %d | Matches found: %d\n", len(r.Listings), len(matches))

		if len(matches) == 0 {
			fmt.Fprintf(w, "\n   No matches found for %s\n", r.ProductName)
			continue
		}

		for i, m := range matches {
			fmt.Fprintf(w, "\n   Match %d:\n", i+1)
			fmt.Fprintf(w, "   URL: %s\n", m.Listing.URL)
			fmt.Fprintf(w, "   Title: %s\n", orNA(m.Listing.Title))
			fmt.Fprintf(w, "   Price: %s\n", orNA(m.Listing.Price))
			if v := m.Verdict; v != nil {
				fmt.Fprintf(w, "   Confidence: %s\n", v.Confidence)
				fmt.Fprintf(w, "   Reason: %s\n", v.Reason)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 70))
	fmt.Fprintf(w, "SUMMARY: %d total listings scraped, %d total matches found\n", totalListings, totalMatches)
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
