package llm

import (
	"context"

	"github.com/structeng/cfst-extractor/internal/entity"
)

// PageImage is one rasterized page ready for the vision model.
type PageImage struct {
	Page int    // 1-indexed page number in the source document
	PNG  []byte // encoded image bytes
}

// ExtractRequest carries one document's pages to the extractor.
type ExtractRequest struct {
	RefNo  string // filename-derived reference identifier
	Images []PageImage
}

// Extractor is the interface the pipeline depends on. Implementations
// return the structured result plus the raw model JSON for auditing.
type Extractor interface {
	ExtractSpecimens(ctx context.Context, req ExtractRequest) (entity.ExtractionResult, []byte, error)
}

// Noop is an Extractor that extracts nothing; useful for dry runs and for
// exercising the pipeline without a model.
type Noop struct{}

func (Noop) ExtractSpecimens(_ context.Context, _ ExtractRequest) (entity.ExtractionResult, []byte, error) {
	return entity.ExtractionResult{IsValid: true, Reason: "noop extractor"}, nil, nil
}
