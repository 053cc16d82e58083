package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alejandrokeller/allan-plot/internal/config"
)

func newRunConfig(t *testing.T, mutate func(*config.Options)) config.RunConfig {
	t.Helper()

	opts := config.DefaultOptions()
	opts.Columns = []string{"x"}
	opts.OutputDir = t.TempDir()
	if mutate != nil {
		mutate(&opts)
	}

	cfg, err := config.NewRunConfig(opts)
	require.NoError(t, err)
	return cfg
}
