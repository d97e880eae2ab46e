package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	s, err := NewSession("abc.def")
	require.NoError(t, err)
	assert.Equal(t, "Bot abc.def", s.Token)
	assert.Equal(t, Intents, s.Identify.Intents)
	assert.Contains(t, s.UserAgent, "dex-vmt-service")

	_, err = NewSession("")
	assert.Error(t, err)
}
