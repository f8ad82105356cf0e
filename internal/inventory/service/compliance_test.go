package service_test

import (
	"testing"

	"github.com/premierlux/premierlux-backend/internal/inventory/service"
	"github.com/stretchr/testify/assert"
)

func TestComplianceScore(t *testing.T) {
	tests := []struct {
		issues int
		want   int
	}{
		{0, 100},
		{1, 95},
		{3, 85},
		{10, 50},
		{20, 0},
		{25, 0}, // clamped
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, service.ComplianceScore(tt.issues), "issues=%d", tt.issues)
	}
}

func TestComplianceRating(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, service.RatingExcellent},
		{90, service.RatingExcellent},
		{89, service.RatingGood},
		{70, service.RatingGood},
		{69, service.RatingWarning},
		{50, service.RatingWarning},
		{49, service.RatingCritical},
		{0, service.RatingCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, service.ComplianceRating(tt.score), "score=%d", tt.score)
	}
}
