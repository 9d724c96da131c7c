package idhash

import (
	"testing"
)

func TestComputeJobID(t *testing.T) {
	tests := []struct {
		name          string
		mint          string
		requestedAtMs int64
		wantLen       int // hash length should be 64
	}{
		{
			name:          "basic job",
			mint:          "So11111111111111111111111111111111111111112",
			requestedAtMs: 1704067234567,
			wantLen:       64,
		},
		{
			name:          "another mint",
			mint:          "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			requestedAtMs: 1704067300000,
			wantLen:       64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeJobID(tt.mint, tt.requestedAtMs)

			if len(got) != tt.wantLen {
				t.Errorf("ComputeJobID() length = %d, want %d", len(got), tt.wantLen)
			}

			// Verify determinism: same inputs should produce same output
			got2 := ComputeJobID(tt.mint, tt.requestedAtMs)
			if got != got2 {
				t.Errorf("ComputeJobID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeJobID_DifferentInputs(t *testing.T) {
	base := ComputeJobID("mint", 1000)

	// Different mint should produce different hash
	diffMint := ComputeJobID("other_mint", 1000)
	if base == diffMint {
		t.Error("Different mint should produce different hash")
	}

	// Different request time should produce different hash
	diffTime := ComputeJobID("mint", 2000)
	if base == diffTime {
		t.Error("Different request time should produce different hash")
	}
}
