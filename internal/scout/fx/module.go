package fx

import (
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"listing-scout/config"
	"listing-scout/internal/dedup"
	"listing-scout/internal/evaluator"
	"listing-scout/internal/fetcher"
	"listing-scout/internal/notifier"
	"listing-scout/internal/scout"
	"listing-scout/internal/scout/dao"
)

// Module wires the scout domain for one run. Options decide at construction
// time whether an evaluator exists at all.
func Module(opts scout.Options) fx.Option {
	return fx.Options(
		fx.Supply(opts),
		fx.Provide(
			fx.Annotate(fetcher.New, fx.As(new(scout.ListingFetcher))),
			newEvaluator,
			dao.NewMatchStore,
			dedup.NewStore,
			notifier.NewResend,
			scout.NewService,
		),
	)
}

func newEvaluator(opts scout.Options, cfg *config.Config, logger *zap.SugaredLogger) (evaluator.Evaluator, error) {
	if opts.NoEval {
		logger.Infow("evaluation disabled (--no-eval)")
		return nil, nil
	}

	return evaluator.NewGemini(evaluator.GeminiConfig{
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.GeminiModel,
		BaseURL:  cfg.GeminiBaseURL,
		Interval: time.Duration(cfg.EvalIntervalMS) * time.Millisecond,
		Logger:   logger,
	})
}
