package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollect(t *testing.T) {
	s, err := Collect()
	if err != nil {
		t.Skipf("host metrics unavailable: %v", err)
	}
	assert.GreaterOrEqual(t, s.CPUPercent, 0.0)
	assert.Greater(t, s.MemoryPercent, 0.0)
	assert.Greater(t, s.ProcessRSS, uint64(0))
}
