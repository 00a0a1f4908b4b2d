package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveName(t *testing.T) {
	cases := map[string]string{
		"ada.lovelace@example.org":      "Ada Lovelace",
		"GRACE_HOPPER@navy.example":     "Grace Hopper",
		"alan+certificates@example.org": "Alan",
		"jean-luc.picard@example.org":   "Jean Luc Picard",
		"@example.org":                  "",
		"  bob@example.org ":            "Bob",
	}
	for in, want := range cases {
		assert.Equal(t, want, DeriveName(in), in)
	}
}
