package tools_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordhub/recordhub/internal/tools"
)

func TestRegistry(t *testing.T) {
	registry := tools.NewRegistry()

	require.NoError(t, registry.Register("document", tools.Entry{
		Application: "records",
		Entity:      "document",
	}))

	t.Run("duplicate registration fails", func(t *testing.T) {
		require.Error(t, registry.Register("document", tools.Entry{}))
	})

	t.Run("lookup", func(t *testing.T) {
		entry, ok := registry.Lookup("document")
		require.True(t, ok)
		assert.Equal(t, "records", entry.Application)

		_, ok = registry.Lookup("missing")
		assert.False(t, ok)
	})

	t.Run("frozen registry rejects registration", func(t *testing.T) {
		registry.Freeze()
		require.Error(t, registry.Register("other", tools.Entry{}))

		_, ok := registry.Lookup("document")
		assert.True(t, ok)
	})

	t.Run("names", func(t *testing.T) {
		assert.Equal(t, []string{"document"}, registry.Names())
	})
}
