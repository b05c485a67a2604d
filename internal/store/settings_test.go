package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository(t *testing.T) {
	t.Run("set and get roundtrip", func(t *testing.T) {
		settings := newTestStore(t).Settings()

		require.NoError(t, settings.Set("camera_index", "2"))

		value, err := settings.Get("camera_index")
		require.NoError(t, err)
		assert.Equal(t, "2", value)
	})

	t.Run("get missing key returns ErrNotFound", func(t *testing.T) {
		settings := newTestStore(t).Settings()

		_, err := settings.Get("never_set")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set replaces existing value", func(t *testing.T) {
		settings := newTestStore(t).Settings()

		require.NoError(t, settings.Set("camera_index", "0"))
		require.NoError(t, settings.Set("camera_index", "3"))

		value, err := settings.Get("camera_index")
		require.NoError(t, err)
		assert.Equal(t, "3", value)
	})

	t.Run("delete removes key", func(t *testing.T) {
		settings := newTestStore(t).Settings()

		require.NoError(t, settings.Set("camera_index", "0"))
		require.NoError(t, settings.Delete("camera_index"))

		_, err := settings.Get("camera_index")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete of missing key is not an error", func(t *testing.T) {
		settings := newTestStore(t).Settings()

		assert.NoError(t, settings.Delete("never_set"))
	})
}
