package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"listing-scout/db"
	"listing-scout/internal/listing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// MatchStore persists evaluated listings so repeat runs accumulate history.
// Persistence is best-effort: when Turso is disabled the write is skipped,
// not failed.
type MatchStore struct {
	conn      db.Conn
	logger    *zap.SugaredLogger
	validator *validator.Validate
}

type NewMatchStoreParams struct {
	fx.In

	Conn   db.Conn `name:"sqlite"`
	Logger *zap.SugaredLogger
}

func NewMatchStore(p NewMatchStoreParams) *MatchStore {
	return &MatchStore{
		conn:      p.Conn,
		logger:    p.Logger,
		validator: validator.New(),
	}
}

type SaveEvaluatedInput struct {
	ProductName string `validate:"required"`
	SearchTerm  string `validate:"required"`
	Evaluated   listing.Evaluated
}

func (s *MatchStore) SaveEvaluated(ctx context.Context, in SaveEvaluatedInput) (rowID string, err error) {
	_ = ctx

	if err := s.validator.Struct(in); err != nil {
		return "", fmt.Errorf("validate save input: %w", err)
	}
	if in.Evaluated.Listing.URL == "" {
		return "", fmt.Errorf("missing listing url")
	}

	rowID = uuid.NewString()

	payloadBytes, err := json.Marshal(in.Evaluated.Listing)
	if err != nil {
		return "", fmt.Errorf("marshal listing payload: %w", err)
	}

	isMatch := 0
	confidence, reason := "", ""
	if v := in.Evaluated.Verdict; v != nil {
		if v.IsMatch {
			isMatch = 1
		}
		confidence = v.Confidence
		reason = v.Reason
	} else if in.Evaluated.Matched() {
		isMatch = 1
	}

	q := s.conn.Rebind(`
INSERT INTO listing_matches (
  id,
  product_name,
  search_term,
  url,
  title,
  price,
  is_match,
  confidence,
  reason,
  payload
) VALUES (
  ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
)
ON CONFLICT(product_name, url) DO UPDATE SET
  search_term = excluded.search_term,
  title = excluded.title,
  price = excluded.price,
  is_match = excluded.is_match,
  confidence = excluded.confidence,
  reason = excluded.reason,
  payload = excluded.payload,
  updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
`)

	l := in.Evaluated.Listing
	if _, err := s.conn.Exec(q,
		rowID,
		in.ProductName,
		in.SearchTerm,
		l.URL,
		l.Title,
		l.Price,
		isMatch,
		confidence,
		reason,
		string(payloadBytes),
	); err != nil {
		if errors.Is(err, db.ErrSQLiteDisabled) {
			s.logger.Infow(
				"turso_sqlite_disabled_skip_persist",
				"reason", err.Error(),
			)
			return rowID, nil
		}
		return "", fmt.Errorf("upsert listing_matches: %w", err)
	}

	s.logger.Infow(
		"listing_match_saved",
		"product", in.ProductName,
		"url", l.URL,
		"is_match", isMatch == 1,
	)
	return rowID, nil
}
