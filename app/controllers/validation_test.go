package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCardNumber(t *testing.T) {
	assert.Equal(t, "4242424242424242", NormalizeCardNumber(" 4242 4242 4242 4242 "))
	assert.Equal(t, "4242424242424242", NormalizeCardNumber("4242424242424242"))
}

func TestValidCardNumber(t *testing.T) {
	tests := []struct {
		name  string
		card  string
		valid bool
	}{
		{"sixteen digits", "4242424242424242", true},
		{"too short", "424242424242424", false},
		{"too long", "42424242424242424", false},
		{"letters", "4242abcd42424242", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidCardNumber(tt.card))
		})
	}
}

func TestValidCVV(t *testing.T) {
	assert.True(t, ValidCVV("123"))
	assert.True(t, ValidCVV("1234"))
	assert.False(t, ValidCVV("12"))
	assert.False(t, ValidCVV("12345"))
	assert.False(t, ValidCVV("12a"))
	assert.False(t, ValidCVV(""))
}
