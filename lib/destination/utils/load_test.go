package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artie-labs/bulksync/lib/config"
	"github.com/artie-labs/bulksync/lib/config/constants"
)

func TestLoad(t *testing.T) {
	{
		_, err := Load(t.Context(), config.Config{Output: "oracle"})
		assert.ErrorContains(t, err, `invalid destination: "oracle"`)
	}
	{
		cfg := config.Config{
			Output: constants.SQLite,
			SQLite: &config.SQLite{Path: filepath.Join(t.TempDir(), "load.db")},
		}
		dest, err := Load(t.Context(), cfg)
		require.NoError(t, err)
		defer dest.Close()

		assert.Equal(t, constants.SQLite, dest.Label())
	}
}
