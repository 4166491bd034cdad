package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/flood-vulnerability-service/internal/vulnerability"
)

func TestScoreAndLevel_LabelsRoundedScore(t *testing.T) {
	tests := []struct {
		raw       float64
		wantScore float64
		wantLevel string
	}{
		{25.004, 25.0, vulnerability.RiskVeryLow},
		{25.006, 25.01, vulnerability.RiskLow},
		{65.004, 65.0, vulnerability.RiskModerate},
		{85.0049, 85.0, vulnerability.RiskHigh},
		{85.006, 85.01, vulnerability.RiskVeryHigh},
	}
	for _, tt := range tests {
		score, level := scoreAndLevel(tt.raw)
		assert.Equal(t, tt.wantScore, score, "raw %v", tt.raw)
		assert.Equal(t, tt.wantLevel, level, "raw %v", tt.raw)
	}
}
