package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonRequestValidate(t *testing.T) {
	tests := []struct {
		name     string
		question string
		wantErr  bool
	}{
		{"valid", "How does bias affect fairness?", false},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a", MaxQuestionLength+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ReasonRequest{Question: tt.question}
			if tt.wantErr {
				assert.Error(t, req.Validate())
			} else {
				assert.NoError(t, req.Validate())
			}
		})
	}
}
