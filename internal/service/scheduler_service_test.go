package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("20:00")
	require.NoError(t, err)
	assert.Equal(t, "0 0 20 * * *", spec)

	spec, err = buildDailySpec("03:10")
	require.NoError(t, err)
	assert.Equal(t, "0 10 3 * * *", spec)
}

func TestBuildDailySpec_Invalid(t *testing.T) {
	for _, input := range []string{"", "20", "24:00", "12:60", "ab:cd", "12:00:00"} {
		_, err := buildDailySpec(input)
		assert.Error(t, err, "input %q", input)
	}
}
