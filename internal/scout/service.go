// Package scout sequences one run: load products, fetch listings, evaluate
// relevance, persist, notify, report. Products are processed one at a time;
// a failure in one never aborts the rest.
package scout

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"listing-scout/config"
	"listing-scout/internal/dedup"
	"listing-scout/internal/evaluator"
	"listing-scout/internal/listing"
	"listing-scout/internal/notifier"
	"listing-scout/internal/report"
	"listing-scout/internal/scout/dao"
)

// ListingFetcher is what the service needs from the scraper.
type ListingFetcher interface {
	Fetch(ctx context.Context, term string) ([]listing.Listing, error)
}

// Options come from the CLI. Evaluation is decided at wiring time: with
// --no-eval no Evaluator is provided at all.
type Options struct {
	ProductsFile string
	Product      string
	NoEval       bool
}

type Service struct {
	cfg      *config.Config
	fetcher  ListingFetcher
	eval     evaluator.Evaluator
	store    *dao.MatchStore
	seen     *dedup.Store
	notifier *notifier.Resend
	out      io.Writer
	logger   *zap.SugaredLogger
}

type NewServiceParams struct {
	fx.In

	Cfg      *config.Config
	Fetcher  ListingFetcher
	Eval     evaluator.Evaluator `optional:"true"`
	Store    *dao.MatchStore
	Seen     *dedup.Store
	Notifier *notifier.Resend `optional:"true"`
	Logger   *zap.SugaredLogger
}

func NewService(p NewServiceParams) *Service {
	return &Service{
		cfg:      p.Cfg,
		fetcher:  p.Fetcher,
		eval:     p.Eval,
		store:    p.Store,
		seen:     p.Seen,
		notifier: p.Notifier,
		out:      os.Stdout,
		logger:   p.Logger,
	}
}

// Run executes one full scout pass and renders the report. The returned
// error is fatal (configuration problems); per-product and per-listing
// failures are folded into the results instead.
func (s *Service) Run(ctx context.Context, opts Options) ([]report.ProductResult, error) {
	path := opts.ProductsFile
	if path == "" {
		path = s.cfg.ProductsFile
	}

	products, err := config.LoadProducts(path)
	if err != nil {
		return nil, err
	}

	products = config.FilterProducts(products, opts.Product)
	if len(products) == 0 {
		return nil, fmt.Errorf("no products matching %q found in configuration", opts.Product)
	}

	results := make([]report.ProductResult, 0, len(products))
	for _, p := range products {
		results = append(results, s.scoutProduct(ctx, p))
	}

	s.notifyMatches(ctx, results)
	report.Render(s.out, results)

	return results, nil
}

func (s *Service) scoutProduct(ctx context.Context, p config.Product) report.ProductResult {
	result := report.ProductResult{ProductName: p.Name, SearchTerm: p.SearchTerm}

	s.logger.Infow("product_scout_started", "product", p.Name, "term", p.SearchTerm)

	listings, err := s.fetcher.Fetch(ctx, p.SearchTerm)
	if err != nil {
		s.logger.Errorw("product_fetch_failed", "product", p.Name, "err", err)
		result.FetchErr = err
		return result
	}

	for _, l := range listings {
		result.Listings = append(result.Listings, s.evaluateListing(ctx, p, l))
	}

	s.persist(ctx, p, result.Listings)

	s.logger.Infow("product_scout_finished",
		"product", p.Name,
		"listings", len(result.Listings),
		"matches", len(result.Matches()),
	)
	return result
}

func (s *Service) evaluateListing(ctx context.Context, p config.Product, l listing.Listing) listing.Evaluated {
	if s.eval == nil || l.Err != "" {
		return listing.Evaluated{Listing: l}
	}

	verdict, err := s.eval.Evaluate(ctx, p, l)
	if err != nil {
		// Safe default on API failure: report the listing as a non-match
		// with the error on record, and keep going.
		s.logger.Warnw("listing_eval_failed", "product", p.Name, "url", l.URL, "err", err)
		verdict = listing.Verdict{
			IsMatch:    false,
			Confidence: "low",
			Reason:     fmt.Sprintf("Evaluation error: %v", err),
		}
	}
	return listing.Evaluated{Listing: l, Verdict: &verdict}
}

func (s *Service) persist(ctx context.Context, p config.Product, evaluated []listing.Evaluated) {
	for _, e := range evaluated {
		if e.Listing.Err != "" {
			continue
		}
		if _, err := s.store.SaveEvaluated(ctx, dao.SaveEvaluatedInput{
			ProductName: p.Name,
			SearchTerm:  p.SearchTerm,
			Evaluated:   e,
		}); err != nil {
			s.logger.Warnw("listing_persist_failed", "product", p.Name, "url", e.Listing.URL, "err", err)
		}
	}
}

// notifyMatches emails matches not seen in earlier runs. Failure to notify
// never affects the run result.
func (s *Service) notifyMatches(ctx context.Context, results []report.ProductResult) {
	if s.notifier == nil {
		return
	}

	var fresh []notifier.Match
	for _, r := range results {
		for _, m := range r.Matches() {
			if !s.seen.MarkSeen(ctx, m.Listing.URL) {
				s.logger.Debugw("match_already_notified", "url", m.Listing.URL)
				continue
			}
			fresh = append(fresh, notifier.Match{ProductName: r.ProductName, Listing: m})
		}
	}

	if err := s.notifier.NotifyMatches(ctx, fresh); err != nil {
		s.logger.Warnw("notify_matches_failed", "matches", len(fresh), "err", err)
		// The send never happened, so the matches were not notified. Forget
		// them again or the next run would suppress them as already seen.
		for _, m := range fresh {
			if ferr := s.seen.Forget(ctx, m.Listing.Listing.URL); ferr != nil {
				s.logger.Warnw("dedup_forget_failed", "url", m.Listing.Listing.URL, "err", ferr)
			}
		}
	}
}

// SetOutput redirects the rendered report, for tests.
func (s *Service) SetOutput(w io.Writer) { s.out = w }
