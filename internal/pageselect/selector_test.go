package pageselect

import (
	"errors"
	"fmt"
	"testing"
)

func mustSelector(t *testing.T, cfg Config) *Selector {
	t.Helper()
	s, err := NewSelector(cfg, nil)
	if err != nil {
		t.Fatalf("NewSelector: %v", err)
	}
	return s
}

func stubTexts(s *Selector, texts map[int]string) {
	s.extractTexts = func(string) (map[int]string, error) { return texts, nil }
	s.pageCount = func(string) (int, error) { return len(texts), nil }
}

func pagesOf(n int, body func(p int) string) map[int]string {
	texts := make(map[int]string, n)
	for p := 1; p <= n; p++ {
		texts[p] = body(p)
	}
	return texts
}

func assertAscendingUnique(t *testing.T, pages []int) {
	t.Helper()
	seen := map[int]bool{}
	for i, p := range pages {
		if p < 1 {
			t.Errorf("page %d is not 1-indexed", p)
		}
		if seen[p] {
			t.Errorf("duplicate page %d", p)
		}
		seen[p] = true
		if i > 0 && pages[i-1] >= p {
			t.Errorf("pages not ascending: %v", pages)
		}
	}
}

func TestShortPaperBypass(t *testing.T) {
	s := mustSelector(t, Config{})
	// Reference-heavy pages would score negative, but short papers are
	// scanned in full regardless of content.
	stubTexts(s, pagesOf(8, func(p int) string { return "References [1, 2, 3]" }))

	sel, err := s.SelectPages("test.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if sel.Strategy != StrategyFullScan {
		t.Errorf("strategy = %v, want FULL_SCAN", sel.Strategy)
	}
	want := []int{1, 2, 3, 4, 5, 6, 7, 8}
	if len(sel.Pages) != 8 {
		t.Fatalf("pages = %v, want %v", sel.Pages, want)
	}
	for i, p := range want {
		if sel.Pages[i] != p {
			t.Fatalf("pages = %v, want %v", sel.Pages, want)
		}
	}
	for _, d := range sel.Details {
		if d.Reason != "short paper, full scan" {
			t.Errorf("page %d reason = %q", d.Page, d.Reason)
		}
	}
}

// 20-page paper: tables on pages 1, 5 and 8, references on 15-20. Pages 5
// and 8 must rank near the top, page 1 is mandatory, and no reference page
// may appear even though fewer than max_selected_pages qualify.
func TestSmartFilteringScenario(t *testing.T) {
	s := mustSelector(t, Config{})
	stubTexts(s, pagesOf(20, func(p int) string {
		switch {
		case p == 1:
			return "Table 1: Specimen overview for the experimental program"
		case p == 5 || p == 8:
			return fmt.Sprintf("Table %d: Experimental results for Specimen A-%d", p, p)
		case p >= 15:
			return "References [1, 2] [3, 4] [5, 6]"
		default:
			return fmt.Sprintf("Plain prose discussion on page %d", p)
		}
	}))

	sel, err := s.SelectPages("test.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if sel.Strategy != StrategySmartFiltered {
		t.Fatalf("strategy = %v, want SMART_FILTERED", sel.Strategy)
	}
	assertAscendingUnique(t, sel.Pages)
	if len(sel.Pages) > DefaultMaxSelectedPages {
		t.Errorf("selected %d pages, cap is %d", len(sel.Pages), DefaultMaxSelectedPages)
	}

	selected := map[int]bool{}
	for _, p := range sel.Pages {
		selected[p] = true
	}
	if !selected[1] || !selected[5] || !selected[8] {
		t.Errorf("pages 1, 5, 8 should be selected, got %v", sel.Pages)
	}
	for _, p := range sel.Pages {
		if p >= 15 {
			t.Errorf("reference page %d selected, want excluded", p)
		}
	}
	if len(sel.Details) != len(sel.Pages) {
		t.Errorf("diagnostics count %d != pages count %d", len(sel.Details), len(sel.Pages))
	}
}

func TestMandatoryFirstPage(t *testing.T) {
	s := mustSelector(t, Config{})
	// Page 1 is pure citations (negative score); mandatory inclusion must
	// still pull it in, with its own reason.
	stubTexts(s, pagesOf(30, func(p int) string {
		if p == 1 {
			return "References [1, 2] [3, 4] [5, 6] [7, 8]"
		}
		return fmt.Sprintf("Table %d: Specimen results", p)
	}))

	sel, err := s.SelectPages("test.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if sel.Pages[0] != 1 {
		t.Fatalf("page 1 missing from %v", sel.Pages)
	}
	if sel.Details[0].Reason != "mandatory first page" {
		t.Errorf("page 1 reason = %q, want mandatory first page", sel.Details[0].Reason)
	}
	if sel.Details[0].Score >= 0 {
		t.Errorf("test premise broken: page 1 score %d should be negative", sel.Details[0].Score)
	}
}

func TestMandatoryFirstPageDisabled(t *testing.T) {
	f := false
	s := mustSelector(t, Config{MandatoryFirstPage: &f})
	stubTexts(s, pagesOf(30, func(p int) string {
		if p == 1 {
			return "References [1, 2] [3, 4] [5, 6] [7, 8]"
		}
		return fmt.Sprintf("Table %d: Specimen results", p)
	}))

	sel, err := s.SelectPages("test.pdf")
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range sel.Pages {
		if p == 1 {
			t.Errorf("negative-score page 1 selected without mandatory flag: %v", sel.Pages)
		}
	}
}

func TestNegativeScoresNeverFillRemainingRoom(t *testing.T) {
	s := mustSelector(t, Config{})
	// Only 3 non-negative pages exist; the other 17 are citation noise.
	stubTexts(s, pagesOf(20, func(p int) string {
		if p <= 3 {
			return fmt.Sprintf("Table %d: Specimen results", p)
		}
		return "References [1, 2] [3, 4] [5, 6] [7, 8]"
	}))

	sel, err := s.SelectPages("test.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Pages) != 3 {
		t.Errorf("pages = %v, want exactly the 3 positive pages", sel.Pages)
	}
	for _, d := range sel.Details {
		if d.Score < 0 && d.Reason != "mandatory first page" {
			t.Errorf("negative-score page %d selected: %+v", d.Page, d)
		}
	}
}

func TestSelectionCaps(t *testing.T) {
	s := mustSelector(t, Config{MaxSelectedPages: 5})
	stubTexts(s, pagesOf(50, func(p int) string {
		return fmt.Sprintf("Table %d: Specimen results", p)
	}))
	sel, err := s.SelectPages("test.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Pages) > 5 {
		t.Errorf("selected %d pages, cap is 5", len(sel.Pages))
	}

	// Pathological configuration: selection cap above the absolute maximum.
	s = mustSelector(t, Config{MaxSelectedPages: 40, AbsoluteMaxPages: 30})
	stubTexts(s, pagesOf(60, func(p int) string {
		return fmt.Sprintf("Table %d: Specimen results", p)
	}))
	sel, err = s.SelectPages("test.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Pages) > 30 {
		t.Errorf("selected %d pages, absolute cap is 30", len(sel.Pages))
	}
	assertAscendingUnique(t, sel.Pages)
}

func TestFallbackOnScoutFailure(t *testing.T) {
	s := mustSelector(t, Config{})
	cause := errors.New("content stream corrupt")
	s.extractTexts = func(string) (map[int]string, error) { return nil, cause }
	s.pageCount = func(string) (int, error) { return 40, nil }

	sel, err := s.SelectPages("broken.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if sel.Strategy != StrategyFallback {
		t.Fatalf("strategy = %v, want FALLBACK", sel.Strategy)
	}
	if !errors.Is(sel.Cause, cause) {
		t.Errorf("Cause = %v, want the scout failure", sel.Cause)
	}
	want := DefaultMaxSelectedPages
	if len(sel.Pages) != want {
		t.Errorf("fallback pages = %v, want 1..%d", sel.Pages, want)
	}
	assertAscendingUnique(t, sel.Pages)
}

func TestFileAccessErrorPropagates(t *testing.T) {
	s := mustSelector(t, Config{})
	boom := errors.New("no such file")
	s.extractTexts = func(string) (map[int]string, error) { return nil, boom }
	s.pageCount = func(string) (int, error) { return 0, boom }

	if _, err := s.SelectPages("missing.pdf"); err == nil {
		t.Fatal("expected error when the file is unreadable")
	}
}

func TestDisabledModeTruncation(t *testing.T) {
	f := false
	s := mustSelector(t, Config{EnableSmartFilter: &f})
	s.pageCount = func(string) (int, error) { return 50, nil }
	// Text extraction must not run at all in disabled mode.
	s.extractTexts = func(string) (map[int]string, error) {
		panic("text scout called in disabled mode")
	}

	sel, err := s.SelectPages("test.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if sel.Strategy != StrategyTruncated {
		t.Errorf("strategy = %v, want TRUNCATED", sel.Strategy)
	}
	if len(sel.Pages) != DefaultMaxScanLimit {
		t.Errorf("pages = %v, want first %d", sel.Pages, DefaultMaxScanLimit)
	}

	// Short papers scan fully even in disabled mode.
	s.pageCount = func(string) (int, error) { return 6, nil }
	sel, err = s.SelectPages("test.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if sel.Strategy != StrategyFullScan || len(sel.Pages) != 6 {
		t.Errorf("strategy = %v pages = %v, want full scan of 6", sel.Strategy, sel.Pages)
	}
}

func TestSelectionDeterministic(t *testing.T) {
	s := mustSelector(t, Config{})
	texts := pagesOf(25, func(p int) string {
		if p%3 == 0 {
			return fmt.Sprintf("Table %d: Specimen results at 12.5 mm", p)
		}
		return fmt.Sprintf("Prose on page %d", p)
	})
	stubTexts(s, texts)

	first, err := s.SelectPages("test.pdf")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		again, err := s.SelectPages("test.pdf")
		if err != nil {
			t.Fatal(err)
		}
		if fmt.Sprint(again.Pages) != fmt.Sprint(first.Pages) {
			t.Fatalf("run %d pages %v differ from first run %v", i, again.Pages, first.Pages)
		}
	}
}
