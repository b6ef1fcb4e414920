package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	require.NotNil(t, Logger())

	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))

	Logger().Debug("layout built", zap.Int("bits", 32))
	require.Equal(t, 1, logs.Len())
	require.Equal(t, "layout built", logs.All()[0].Message)

	SetLogger(nil)
	Logger().Debug("dropped")
	require.Equal(t, 1, logs.Len())
}
