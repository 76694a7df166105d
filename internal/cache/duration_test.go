package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "30s", FormatDuration(30*time.Second))
	assert.Equal(t, "5m", FormatDuration(5*time.Minute))
	assert.Equal(t, "2h", FormatDuration(2*time.Hour))
	assert.Equal(t, "2h30m", FormatDuration(2*time.Hour+30*time.Minute))
	assert.Equal(t, "3d", FormatDuration(72*time.Hour))
	assert.Equal(t, "3d2h", FormatDuration(74*time.Hour))
}

func TestParseMaxAge(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"3600", time.Hour},
		{"30m", 30 * time.Minute},
		{"1h30m", 90 * time.Minute},
		{"2d", 48 * time.Hour},
		{"2d12h", 60 * time.Hour},
	}
	for _, tc := range cases {
		got, err := ParseMaxAge(tc.in)
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, in := range []string{"", "soon", "d", "xd4h"} {
		_, err := ParseMaxAge(in)
		assert.Error(t, err, in)
	}
}
