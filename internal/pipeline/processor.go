// Package pipeline orchestrates per-document extraction: page selection,
// rasterization, model extraction, normalisation and physical validation.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/structeng/cfst-extractor/constants"
	"github.com/structeng/cfst-extractor/internal/entity"
	"github.com/structeng/cfst-extractor/internal/llm"
	"github.com/structeng/cfst-extractor/internal/pageselect"
	"github.com/structeng/cfst-extractor/internal/raster"
	"github.com/structeng/cfst-extractor/internal/validation"
)

// Result is the outcome of processing one document.
type Result struct {
	Path        string
	RefNo       string
	Status      constants.DocStatus
	Reason      string
	Selection   pageselect.Selection
	Specimens   []entity.Specimen
	RawResponse []byte // model JSON as received, for auditing
	Err         error
}

// PageSelector decides which pages of a document to submit for extraction.
// *pageselect.Selector is the production implementation.
type PageSelector interface {
	SelectPages(path string) (pageselect.Selection, error)
}

// Processor runs the full extraction pipeline for single documents.
type Processor struct {
	selector  PageSelector
	raster    raster.Rasterizer
	extractor llm.Extractor
	logger    *slog.Logger
}

func NewProcessor(selector PageSelector, r raster.Rasterizer, extractor llm.Extractor, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{selector: selector, raster: r, extractor: extractor, logger: logger}
}

// ProcessFile runs select -> rasterize -> extract -> validate for one PDF.
// Failures are captured in the Result rather than aborting a batch: Status
// is FAILED with Err set. Papers the model judges out of scope come back
// EXCLUDED; a valid paper yielding zero specimens comes back MANUAL_REVIEW.
func (p *Processor) ProcessFile(ctx context.Context, path string) Result {
	start := time.Now()
	runID := uuid.NewString()
	refNo := refNoFromPath(path)
	res := Result{Path: path, RefNo: refNo}

	p.logger.Info("pipeline.start", "run_id", runID, "ref_no", refNo, "path", path)

	sel, err := p.selector.SelectPages(path)
	if err != nil {
		return p.fail(res, runID, "page selection", err)
	}
	res.Selection = sel
	p.logger.Info("pipeline.select.ok",
		"run_id", runID, "ref_no", refNo,
		"strategy", string(sel.Strategy), "pages", len(sel.Pages))

	images, err := p.raster.Rasterize(ctx, path, sel.Pages)
	if err != nil {
		return p.fail(res, runID, "rasterize", err)
	}

	extraction, raw, err := p.extractor.ExtractSpecimens(ctx, llm.ExtractRequest{
		RefNo:  refNo,
		Images: images,
	})
	if err != nil {
		return p.fail(res, runID, "extract", err)
	}
	res.RawResponse = raw

	if !extraction.IsValid {
		res.Status = constants.DocStatusExcluded
		res.Reason = extraction.Reason
		p.logger.Info("pipeline.excluded",
			"run_id", runID, "ref_no", refNo, "reason", extraction.Reason)
		return res
	}

	specimens := extraction.Specimens(refNo)
	if len(specimens) == 0 {
		res.Status = constants.DocStatusManualReview
		res.Reason = "valid paper but no specimen records extracted"
		p.logger.Warn("pipeline.no_records", "run_id", runID, "ref_no", refNo)
		return res
	}

	res.Specimens = validation.ValidateBatch(specimens)
	res.Status = constants.DocStatusExtracted

	sum := validation.Summarize(res.Specimens)
	p.logger.Info("pipeline.ok",
		"run_id", runID, "ref_no", refNo,
		"specimens", sum.Total, "manual_check", sum.NeedsManualCheck,
		"elapsed_ms", time.Since(start).Milliseconds())
	return res
}

func (p *Processor) fail(res Result, runID, stage string, err error) Result {
	res.Status = constants.DocStatusFailed
	res.Err = fmt.Errorf("%s: %w", stage, err)
	res.Reason = res.Err.Error()
	p.logger.Error("pipeline.failed",
		"run_id", runID, "ref_no", res.RefNo, "stage", stage, "error", err)
	return res
}

// refNoFromPath derives the reference identifier from the PDF filename,
// e.g. "papers/2.3-Han2005.pdf" -> "2.3-Han2005".
func refNoFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
