package pageselect

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Defaults for the selection thresholds.
const (
	DefaultShortPaperThreshold = 10
	DefaultMaxSelectedPages    = 8
	DefaultMaxScanLimit        = 10
	DefaultAbsoluteMaxPages    = 30
)

// Strategy identifies which selection path produced a Selection.
type Strategy string

const (
	StrategyFullScan      Strategy = "FULL_SCAN"      // short paper, every page
	StrategySmartFiltered Strategy = "SMART_FILTERED" // score-ranked subset
	StrategyTruncated     Strategy = "TRUNCATED"      // smart filtering disabled, first pages only
	StrategyFallback      Strategy = "FALLBACK"       // text scout failed, first pages only
)

// Config controls page selection. Zero values mean "use the default".
type Config struct {
	ShortPaperThreshold int  `yaml:"short_paper_threshold" json:"short_paper_threshold"`
	MaxSelectedPages    int  `yaml:"max_selected_pages" json:"max_selected_pages"`
	MaxScanLimit        int  `yaml:"max_scan_limit" json:"max_scan_limit"`
	AbsoluteMaxPages    int  `yaml:"absolute_max_pages" json:"absolute_max_pages"`
	MandatoryFirstPage  *bool `yaml:"mandatory_include_first_page" json:"mandatory_include_first_page"`
	EnableSmartFilter   *bool `yaml:"enable_smart_filtering" json:"enable_smart_filtering"`

	Scoring ScoreConfig `yaml:"scoring" json:"scoring"`
}

func (c *Config) applyDefaults() {
	if c.ShortPaperThreshold <= 0 {
		c.ShortPaperThreshold = DefaultShortPaperThreshold
	}
	if c.MaxSelectedPages <= 0 {
		c.MaxSelectedPages = DefaultMaxSelectedPages
	}
	if c.MaxScanLimit <= 0 {
		c.MaxScanLimit = DefaultMaxScanLimit
	}
	if c.AbsoluteMaxPages <= 0 {
		c.AbsoluteMaxPages = DefaultAbsoluteMaxPages
	}
	if c.MandatoryFirstPage == nil {
		t := true
		c.MandatoryFirstPage = &t
	}
	if c.EnableSmartFilter == nil {
		t := true
		c.EnableSmartFilter = &t
	}
}

// PageScore is the per-selected-page diagnostic record.
type PageScore struct {
	Page   int    `json:"page"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// Selection is the outcome of page selection. Pages is always 1-indexed,
// unique and ascending. Cause is set only on the fallback path.
type Selection struct {
	Pages       []int       `json:"pages"`
	Strategy    Strategy    `json:"strategy"`
	Description string      `json:"description"`
	Details     []PageScore `json:"details"`
	Cause       error       `json:"-"`
}

// Selector orchestrates text scouting and scoring for whole documents.
type Selector struct {
	cfg    Config
	scorer *Scorer
	logger *slog.Logger

	// Stubbed in tests.
	extractTexts func(path string) (map[int]string, error)
	pageCount    func(path string) (int, error)
}

// NewSelector compiles the scoring configuration and returns a ready
// selector. Configuration problems (bad regex) surface here, once.
func NewSelector(cfg Config, logger *slog.Logger) (*Selector, error) {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	scorer, err := NewScorer(cfg.Scoring)
	if err != nil {
		return nil, fmt.Errorf("page scorer: %w", err)
	}
	return &Selector{
		cfg:          cfg,
		scorer:       scorer,
		logger:       logger,
		extractTexts: ExtractPageTexts,
		pageCount:    api.PageCountFile,
	}, nil
}

// SelectPages decides which pages of the document to submit for extraction.
// The returned error is non-nil only when the file itself is inaccessible;
// every recoverable problem degrades to a truncation strategy instead so the
// caller always gets a usable page list.
func (s *Selector) SelectPages(path string) (Selection, error) {
	if !*s.cfg.EnableSmartFilter {
		return s.selectTruncated(path)
	}

	texts, err := s.extractTexts(path)
	if err != nil {
		// Text extraction failed but the document may still be readable;
		// fall back to the first pages rather than giving up on the file.
		total, cntErr := s.pageCount(path)
		if cntErr != nil {
			return Selection{}, fmt.Errorf("scout %s: %w", path, err)
		}
		sel := s.fallback(total, err)
		s.logger.Warn("pageselect.fallback",
			"path", path, "total_pages", total, "cause", err)
		return sel, nil
	}

	sel := s.selectSmart(texts)
	s.logger.Info("pageselect.ok",
		"path", path,
		"strategy", sel.Strategy,
		"total_pages", len(texts),
		"selected", len(sel.Pages),
	)
	return sel, nil
}

// selectSmart applies the short-paper bypass or score-ranked filtering over
// already extracted page texts.
func (s *Selector) selectSmart(texts map[int]string) Selection {
	total := len(texts)

	if total <= s.cfg.ShortPaperThreshold {
		sel := Selection{
			Strategy: StrategyFullScan,
			Description: fmt.Sprintf("short paper, full scan (%d pages <= %d threshold)",
				total, s.cfg.ShortPaperThreshold),
		}
		for p := 1; p <= total; p++ {
			sel.Pages = append(sel.Pages, p)
			sel.Details = append(sel.Details, PageScore{
				Page: p, Score: 0, Reason: "short paper, full scan",
			})
		}
		return sel
	}

	// Score every page, rank by score descending; ties keep document order
	// so selection stays deterministic.
	ranked := make([]PageScore, 0, total)
	for p := 1; p <= total; p++ {
		ranked = append(ranked, PageScore{Page: p, Score: s.scorer.Score(texts[p])})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Page < ranked[j].Page
	})

	chosen := make(map[int]PageScore, s.cfg.MaxSelectedPages)
	if *s.cfg.MandatoryFirstPage {
		score := s.scorer.Score(texts[1])
		chosen[1] = PageScore{Page: 1, Score: score, Reason: "mandatory first page"}
	}
	for _, ps := range ranked {
		if len(chosen) >= s.cfg.MaxSelectedPages {
			break
		}
		if _, ok := chosen[ps.Page]; ok {
			continue
		}
		// Negative scores flag reference/simulation noise; never select
		// them even when room remains.
		if ps.Score < 0 {
			continue
		}
		ps.Reason = fmt.Sprintf("score %d", ps.Score)
		chosen[ps.Page] = ps
	}

	pages := make([]int, 0, len(chosen))
	for p := range chosen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	if len(pages) > s.cfg.AbsoluteMaxPages {
		pages = pages[:s.cfg.AbsoluteMaxPages]
	}

	sel := Selection{
		Strategy: StrategySmartFiltered,
		Description: fmt.Sprintf("smart filtering: %d of %d pages selected",
			len(pages), total),
		Pages: pages,
	}
	for _, p := range pages {
		sel.Details = append(sel.Details, chosen[p])
	}
	return sel
}

// selectTruncated is the disabled-mode strategy: full scan for short papers,
// otherwise the first MaxScanLimit pages regardless of content.
func (s *Selector) selectTruncated(path string) (Selection, error) {
	total, err := s.pageCount(path)
	if err != nil {
		return Selection{}, fmt.Errorf("page count %s: %w", path, err)
	}

	if total <= s.cfg.ShortPaperThreshold {
		sel := Selection{
			Strategy: StrategyFullScan,
			Description: fmt.Sprintf("smart filtering disabled, full scan (%d pages <= %d threshold)",
				total, s.cfg.ShortPaperThreshold),
		}
		for p := 1; p <= total; p++ {
			sel.Pages = append(sel.Pages, p)
			sel.Details = append(sel.Details, PageScore{Page: p, Reason: "full scan"})
		}
		return sel, nil
	}

	n := min(total, s.cfg.MaxScanLimit)
	sel := Selection{
		Strategy: StrategyTruncated,
		Description: fmt.Sprintf("smart filtering disabled, truncated scan (first %d of %d pages)",
			n, total),
	}
	for p := 1; p <= n; p++ {
		sel.Pages = append(sel.Pages, p)
		sel.Details = append(sel.Details, PageScore{Page: p, Reason: "truncated scan"})
	}
	return sel, nil
}

// fallback selects the first pages when scouting failed mid-document.
func (s *Selector) fallback(total int, cause error) Selection {
	n := min(total, s.cfg.MaxSelectedPages)
	sel := Selection{
		Strategy: StrategyFallback,
		Description: fmt.Sprintf("smart filtering failed (%v), truncated to first %d of %d pages",
			cause, n, total),
		Cause: cause,
	}
	for p := 1; p <= n; p++ {
		sel.Pages = append(sel.Pages, p)
		sel.Details = append(sel.Details, PageScore{Page: p, Reason: "fallback truncation"})
	}
	return sel
}
