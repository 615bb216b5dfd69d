package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"89161234567", "+79161234567"},
		{"8 (916) 123-45-67", "+79161234567"},
		{"79161234567", "+79161234567"},
		{"+7 916 123-45-67", "+79161234567"},
		{"9161234567", "+79161234567"},
		{"916 123 45 67", "+79161234567"},
		{"", ""},
		{"---", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizePhone(tc.in), "input %q", tc.in)
	}
}
