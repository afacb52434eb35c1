package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderValid(t *testing.T) {
	assert.True(t, ProviderPayPal.Valid())
	assert.True(t, ProviderStripe.Valid())
	assert.False(t, Provider("adyen").Valid())
	assert.False(t, Provider("").Valid())
}
