package chains

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidChainsStartsWithHome(t *testing.T) {
	all := ValidChains()
	assert.Equal(t, Home, all[0])
	assert.Len(t, all, len(Competitors())+1)
}

func TestCanonical(t *testing.T) {
	c, ok := Canonical("  zudio ")
	assert.True(t, ok)
	assert.Equal(t, "Zudio", c)

	c, ok = Canonical("Unknown Mart")
	assert.False(t, ok)
	assert.Equal(t, "Unknown Mart", c)
}

func TestIsHome(t *testing.T) {
	assert.True(t, IsHome("home"))
	assert.False(t, IsHome("Westside"))
	assert.True(t, IsValidChain("max fashion"))
}
