package noop

import (
	"context"
	"testing"

	"github.com/netxfw/saf/internal/utils/logger"
	"github.com/netxfw/saf/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForward(t *testing.T) {
	f, err := Factory(&sdk.PluginContext{Name: "null", Logger: logger.Nop()})
	require.NoError(t, err)

	ev := sdk.NewEvent(sdk.Data{}, sdk.Data{})
	assert.NoError(t, f.Forward(context.Background(), ev))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.Forward(ctx, ev), context.Canceled)
}
