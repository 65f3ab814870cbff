package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithModelNormalizesPrefix(t *testing.T) {
	ctx := WithModel(context.Background(), "models/gemini-1.5-pro-latest")
	require.Equal(t, "gemini-1.5-pro-latest", modelFromContext(ctx))
}

func TestWithModelIgnoresEmpty(t *testing.T) {
	ctx := WithModel(context.Background(), "   ")
	require.Empty(t, modelFromContext(ctx))
	require.Empty(t, modelFromContext(context.Background()))
}

func TestNormalizeModel(t *testing.T) {
	require.Equal(t, "gpt-4o", normalizeModel(" gpt-4o "))
	require.Equal(t, "gemini-2.0-flash", normalizeModel("models/gemini-2.0-flash"))
}
