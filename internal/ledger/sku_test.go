package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkuPrefix(t *testing.T) {
	tests := []struct {
		name     string
		category string
		want     string
	}{
		{"mapped tools", "Tools", "TOL"},
		{"mapped testing", "Testing", "TST"},
		{"mapped fallback", "General", "GEN"},
		{"unknown category uses first three letters", "Plumbing", "PLU"},
		{"digits replaced with X", "3D Printing", "XDX"},
		{"short name padded with Z", "IT", "ITZ"},
		{"single letter padded", "A", "AZZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, skuPrefix(tt.category))
		})
	}
}

func TestNextSKU(t *testing.T) {
	tests := []struct {
		name     string
		category string
		existing []string
		want     string
	}{
		{"empty inventory starts at one", "Tools", nil, "TOL-001"},
		{"increments past highest suffix", "Tools", []string{"TOL-001", "TOL-007", "TOL-003"}, "TOL-008"},
		{"other prefixes ignored", "Tools", []string{"SAF-100", "MEC-042"}, "TOL-001"},
		{"free-form skus ignored", "Tools", []string{"TOL-xyz", "TOLBOX-2"}, "TOL-001"},
		{"crosses three digit padding", "Safety", []string{"SAF-099"}, "SAF-100"},
		{"unmapped category", "Plumbing", []string{"PLU-004"}, "PLU-005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextSKU(tt.category, tt.existing))
		})
	}
}
