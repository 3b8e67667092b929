package evaluator

import (
	"context"
	"fmt"

	"listing-scout/config"
	"listing-scout/internal/listing"
)

// Evaluator judges whether a listing matches a product's criteria.
type Evaluator interface {
	Name() string
	Evaluate(ctx context.Context, product config.Product, l listing.Listing) (listing.Verdict, error)
}

const promptTemplate = `You are evaluating a Craigslist listing to determine if it matches a specific product.

PRODUCT BEING SEARCHED: %s

LISTING TITLE: %s
LISTING PRICE: %s
LISTING DESCRIPTION: %s

MATCHING CRITERIA:
%s

Does this listing match the product being searched?

Respond with ONLY a JSON object in this exact format:
{"is_match": true/false, "confidence": "high/medium/low", "reason": "brief explanation"}

Rules:
- is_match should be true ONLY if the listing is for one of the models specified in the matching criteria
- Be STRICT: if the listing is for a different model, variant, or product line not explicitly listed in the criteria, mark as NOT a match
- Accessories, cases, bags, or parts are NOT matches unless the actual product is included
- When in doubt, mark as NOT a match - only include listings that clearly match the specified models
- The listing must explicitly mention or clearly be for one of the allowed models to be considered a match`

func buildPrompt(product config.Product, l listing.Listing) string {
	return fmt.Sprintf(promptTemplate,
		product.Name,
		orNA(l.Title),
		orNA(l.Price),
		orNA(l.Description),
		product.Criteria,
	)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
