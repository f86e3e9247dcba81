package service

import (
	"context"

	classifierModel "github.com/dapplion/review-royale/internal/classifier/model"
)

// Noop is a Backend that classifies nothing, leaving scoring flat.
type Noop struct{}

// ClassifyBatch returns no verdicts.
func (Noop) ClassifyBatch(_ context.Context, _ []string) ([]classifierModel.Classification, error) {
	return nil, nil
}
