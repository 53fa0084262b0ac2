package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FME849/wsos23-voting-app/internal/domain"
)

func TestSOLToLamports(t *testing.T) {
	got, err := solToLamports(500_000_000)
	require.NoError(t, err)
	assert.Equal(t, 500_000_000*domain.LamportsPerSOL, got)

	maxSOL := uint64(math.MaxUint64) / domain.LamportsPerSOL
	got, err = solToLamports(maxSOL)
	require.NoError(t, err)
	assert.Equal(t, maxSOL*domain.LamportsPerSOL, got)

	_, err = solToLamports(maxSOL + 1)
	assert.Error(t, err)
	_, err = solToLamports(0)
	assert.Error(t, err)
}
