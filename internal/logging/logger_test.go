package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		development bool
		verbose     bool
		debug       bool
	}{
		{name: "development", development: true},
		{name: "development verbose", development: true, verbose: true, debug: true},
		{name: "production", development: false},
		{name: "production verbose", development: false, verbose: true, debug: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			logger, err := New(tc.development, tc.verbose)
			require.NoError(t, err)
			require.NotNil(t, logger)
			defer logger.Sync() //nolint:errcheck // best-effort flush

			assert.Equal(t, tc.debug, logger.Core().Enabled(zapcore.DebugLevel))
			assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
		})
	}
}
