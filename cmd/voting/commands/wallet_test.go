package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSOL(t *testing.T) {
	valid := []struct {
		in   string
		want uint64
	}{
		{"1", 1_000_000_000},
		{"0.5", 500_000_000},
		{".25", 250_000_000},
		{"2.000000001", 2_000_000_001},
		{"0.000000001", 1},
		{"1.10000000000", 1_100_000_000},
		{"18446744073", 18_446_744_073_000_000_000},
		{"18446744073.709551615", 18_446_744_073_709_551_615},
	}
	for _, tc := range valid {
		got, err := parseSOL(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, in := range []string{
		"", ".", "0", "0.0", "-1", "+1", "abc", "1e3", "1.2.3",
		"0.0000000001",          // finer than a lamport
		"18446744073.709551616", // one lamport past uint64
		"18446744074",           // whole SOL overflow
		"99999999999999999999",  // beyond uint64 before scaling
	} {
		_, err := parseSOL(in)
		assert.Error(t, err, in)
	}
}

func TestFormatSOL(t *testing.T) {
	assert.Equal(t, "0", formatSOL(0))
	assert.Equal(t, "1", formatSOL(1_000_000_000))
	assert.Equal(t, "0.000000001", formatSOL(1))
	assert.Equal(t, "2.5", formatSOL(2_500_000_000))
	assert.Equal(t, "18446744073.709551615", formatSOL(18_446_744_073_709_551_615))
}
