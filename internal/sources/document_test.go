package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ToDocument(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t)

	assert.Equal(t, Document{
		Active:   []string{activeURL},
		Inactive: []string{inactiveURL},
	}, r.ToDocument())

	empty := Empty().ToDocument()
	assert.NotNil(t, empty.Active)
	assert.NotNil(t, empty.Inactive)
}

func TestFromDocument_RoundTrip(t *testing.T) {
	t.Parallel()

	registries := []Document{
		{},
		{Active: []string{activeURL}, Inactive: []string{inactiveURL}},
		{Active: []string{"https://rubygems.org/", "https://gems.example.com/"}},
		{Inactive: []string{"http://old-mirror.example.com/", "http://offline.example.com/"}},
	}

	for _, doc := range registries {
		original, err := FromDocument(doc)
		require.NoError(t, err)

		restored, err := FromDocument(original.ToDocument())
		require.NoError(t, err)

		assert.Equal(t, original.Active(), restored.Active())
		assert.Equal(t, original.Inactive(), restored.Inactive())
	}
}

func TestFromDocument_RejectsOverlap(t *testing.T) {
	t.Parallel()

	_, err := FromDocument(Document{
		Active:   []string{activeURL},
		Inactive: []string{activeURL},
	})
	require.ErrorIs(t, err, ErrOverlap)
	assert.Contains(t, err.Error(), activeURL)
}
