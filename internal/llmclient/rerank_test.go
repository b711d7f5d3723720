package llmclient

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreFromTokenYes(t *testing.T) {
	relevant, score := scoreFromToken("yes", math.Exp(-0.1))
	assert.True(t, relevant)
	assert.InDelta(t, 0.5+0.5*math.Exp(-0.1), score, 1e-9)
}

func TestScoreFromTokenNo(t *testing.T) {
	relevant, score := scoreFromToken("no", math.Exp(-0.2))
	assert.False(t, relevant)
	assert.InDelta(t, 0.5*(1-math.Exp(-0.2)), score, 1e-9)
}

func TestScoreFromTokenUnknownIsNeutral(t *testing.T) {
	relevant, score := scoreFromToken("maybe", 0.9)
	assert.False(t, relevant)
	assert.Equal(t, 0.3, score)
}
