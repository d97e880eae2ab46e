package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestError_AddsCaller(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	set(zap.New(core))
	t.Cleanup(func() { set(zap.NewNop()) })

	Error("could not do the thing", errors.New("boom"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "could not do the thing", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "boom", fields["error"])
	assert.Contains(t, fields["caller"], "log/log_test.go:")
}

func TestInit_Level(t *testing.T) {
	t.Cleanup(func() { set(zap.NewNop()) })

	require.NoError(t, Init("warn", false))
	assert.False(t, L().Desugar().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, L().Desugar().Core().Enabled(zapcore.WarnLevel))

	assert.Error(t, Init("loud", false))
}
