package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartSpinnerEnabled(t *testing.T) {
	t.Parallel()
	stop := startSpinner(true, "testing")
	require.NotNil(t, stop)
	stop()
}

func TestStartSpinnerDisabled(t *testing.T) {
	t.Parallel()
	stop := startSpinner(false, "testing")
	require.NotNil(t, stop)
	stop()
}

func TestStartSpinnerStopIsIdempotent(t *testing.T) {
	t.Parallel()
	stop := startSpinner(true, "testing")
	stop()
	stop()
}
