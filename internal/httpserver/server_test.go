package httpserver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreyasgm/atlas-router/internal/checkpoint"
)

func TestServer_ValidateWiring(t *testing.T) {
	t.Run("nothing wired", func(t *testing.T) {
		s := NewServer(0, nil)
		err := s.ValidateWiring()
		require.Error(t, err)
		msg := err.Error()
		assert.Contains(t, msg, "checkpoint store")
		assert.Contains(t, msg, "agent graph")
	})

	t.Run("fully wired", func(t *testing.T) {
		s := NewServer(0, nil)
		s.SetStore(checkpoint.NewMemoryStore())
		s.SetGraph(&acceptingGraph{})
		assert.NoError(t, s.ValidateWiring())
	})

	t.Run("partial wiring reports only missing", func(t *testing.T) {
		s := NewServer(0, nil)
		s.SetStore(checkpoint.NewMemoryStore())
		err := s.ValidateWiring()
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "agent graph"))
		assert.False(t, strings.Contains(err.Error(), "checkpoint store"))
	})
}
