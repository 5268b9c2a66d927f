package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	cases := []struct {
		level, format string
		want          zapcore.Level
	}{
		{"debug", "json", zapcore.DebugLevel},
		{"WARN", "console", zapcore.WarnLevel},
		{"bogus", "json", zapcore.InfoLevel},
		{"", "", zapcore.InfoLevel},
	}
	for _, tc := range cases {
		log, err := New(tc.level, tc.format, "treatment-tracker")
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(tc.want), "level %q", tc.level)
		if tc.want > zapcore.DebugLevel {
			assert.False(t, log.Core().Enabled(tc.want-1), "level %q", tc.level)
		}
	}
}
