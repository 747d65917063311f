package install

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/easy-install/ei/internal/log"
)

func TestOptimise_NoOpWhenNeitherRequested(t *testing.T) {
	// Neither strip nor upx is requested; Optimise must not touch the
	// filesystem or invoke any external tool.
	require.NotPanics(t, func() {
		Optimise("/nonexistent/path", false, false, log.NewNoop())
	})
}

func TestOptimise_MissingToolIsNonFatal(t *testing.T) {
	// "strip" and "upx" are assumed absent or irrelevant in the test
	// sandbox; Optimise must swallow the failure rather than panic or
	// return an error (it has no error return at all).
	require.NotPanics(t, func() {
		Optimise(t.TempDir()+"/does-not-exist", true, true, log.NewNoop())
	})
}
