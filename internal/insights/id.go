package insights

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// ID derives a stable insight ID from store, category, topic and the UTC day
// of at. Two passes on the same day produce the same IDs for the same findings.
func ID(storeID string, category Category, topic string, at time.Time) string {
	key := strings.Join([]string{storeID, string(category), topic, at.UTC().Format("2006-01-02")}, "|")
	sum := sha256.Sum256([]byte(key))
	return "ins_" + hex.EncodeToString(sum[:])[:16]
}
