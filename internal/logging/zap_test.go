package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/config"
)

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(&config.Config{LogLevel: "warn", Env: config.EnvProduction})
	require.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Desugar().Core().Enabled(zapcore.WarnLevel))

	l, err = NewLogger(&config.Config{LogLevel: "debug", Env: config.EnvDevelopment})
	require.NoError(t, err)
	assert.True(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))

	_, err = NewLogger(&config.Config{LogLevel: "loud"})
	assert.Error(t, err)
}
