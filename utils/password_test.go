package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordPolicyViolations(t *testing.T) {
	assert.Empty(t, PasswordPolicyViolations("Secret123"))
	assert.True(t, IsStrongPassword("Abcdefg1"))

	assert.Len(t, PasswordPolicyViolations("short"), 3)
	assert.Equal(t, []string{"Passwords must have at least one digit ('0'-'9')."},
		PasswordPolicyViolations("NoDigitsHere"))
	assert.Equal(t, []string{"Passwords must have at least one uppercase ('A'-'Z')."},
		PasswordPolicyViolations("lowercase1"))
}
