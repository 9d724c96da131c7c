package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeJobID computes a deterministic analysis job ID using SHA256.
// Formula: SHA256(mint|requestedAtMs)
// Returns hex-encoded hash (64 characters).
func ComputeJobID(mint string, requestedAtMs int64) string {
	data := fmt.Sprintf("%s|%d", mint, requestedAtMs)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
