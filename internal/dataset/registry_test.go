package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name     string
		lookup   string
		wantName string
	}{
		{name: "canonical BASSE", lookup: "BASSE", wantName: "BASSE"},
		{name: "lowercase basse", lookup: "basse", wantName: "BASSE"},
		{name: "mixed case flares", lookup: "Flares", wantName: "FLARES"},
		{name: "surrounding whitespace", lookup: "  FLARES ", wantName: "FLARES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plugin, err := Get(tt.lookup)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, plugin.Name())
		})
	}

	t.Run("unknown dataset lists valid names", func(t *testing.T) {
		_, err := Get("imaginary")
		require.Error(t, err)
		assert.ErrorContains(t, err, "imaginary")
		assert.ErrorContains(t, err, "BASSE, FLARES")
	})
}
