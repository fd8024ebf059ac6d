package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	got, err := normalizeEmail("  Ana.Ilic@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "ana.ilic@example.com", got)

	for _, bad := range []string{"", "not-an-email", "Ana <ana@example.com>", "a@"} {
		_, err := normalizeEmail(bad)
		assert.ErrorIs(t, err, ErrInvalidEmail, bad)
	}
}

func TestBloodType(t *testing.T) {
	assert.True(t, validBloodType(normalizeBloodType(" ab+ ")))
	assert.True(t, validBloodType("O-"))
	assert.False(t, validBloodType("C+"))
	assert.False(t, validBloodType(""))
}
