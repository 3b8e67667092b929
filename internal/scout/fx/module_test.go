package fx

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"listing-scout/config"
	"listing-scout/internal/scout"
)

func TestNewEvaluator_NoEval(t *testing.T) {
	t.Parallel()

	eval, err := newEvaluator(scout.Options{NoEval: true}, &config.Config{}, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.Nil(t, eval)
}

func TestNewEvaluator_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := newEvaluator(scout.Options{}, &config.Config{GeminiModel: "gemini-2.5-flash"}, zap.NewNop().Sugar())
	require.Error(t, err)
	require.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestNewEvaluator_WithKey(t *testing.T) {
	t.Parallel()

	eval, err := newEvaluator(scout.Options{}, &config.Config{
		GeminiAPIKey:  "k",
		GeminiModel:   "gemini-2.5-flash",
		GeminiBaseURL: "https://generativelanguage.googleapis.com",
	}, zap.NewNop().Sugar())
	require.NoError(t, err)
	require.NotNil(t, eval)
	require.Equal(t, "gemini", eval.Name())
}
