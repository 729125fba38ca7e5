package log

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrom_ReturnsStoredLogger(t *testing.T) {
	t.Parallel()

	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := Into(context.Background(), l)

	require.Same(t, l, From(ctx))
}

func TestFrom_FallsBackToDefault(t *testing.T) {
	t.Parallel()

	require.NotNil(t, From(context.Background()))
}
