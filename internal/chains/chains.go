package chains

import "strings"

// Home is the chain identifier for stores in our own network.
const Home = "HOME"

// Competitors returns the competitor chains tracked by the proximity engine.
func Competitors() []string {
	return []string{
		"Zudio",
		"Westside",
		"Max Fashion",
		"Pantaloons",
		"Trends",
		"V-Mart",
	}
}

// ValidChains returns every chain the service knows about, home first.
func ValidChains() []string {
	return append([]string{Home}, Competitors()...)
}

// IsValidChain checks if a chain name is known. Matching is case-insensitive.
func IsValidChain(chain string) bool {
	_, ok := Canonical(chain)
	return ok
}

// Canonical returns the registered spelling of a chain name.
func Canonical(chain string) (string, bool) {
	chain = strings.TrimSpace(chain)
	for _, c := range ValidChains() {
		if strings.EqualFold(c, chain) {
			return c, true
		}
	}
	return chain, false
}

// IsHome reports whether the chain is the home network.
func IsHome(chain string) bool {
	return strings.EqualFold(strings.TrimSpace(chain), Home)
}
