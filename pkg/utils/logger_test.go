package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gohornet/escrow/pkg/utils"
)

func TestWrappedLoggerWithoutLogger(t *testing.T) {

	var nilLogger *utils.WrappedLogger
	require.Nil(t, nilLogger.Logger())
	require.NotPanics(t, func() {
		nilLogger.LogInfof("dropped %d", 1)
	})

	wrapped := utils.NewWrappedLogger(nil)
	require.Nil(t, wrapped.Logger())
	require.NotPanics(t, func() {
		wrapped.LogDebugf("dropped")
		wrapped.LogInfo("dropped")
		wrapped.LogWarnf("dropped")
		wrapped.LogErrorf("dropped")
		wrapped.LogPanicf("dropped")
	})
}
