package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writePDF(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestImportMovesAndRecords(t *testing.T) {
	db := openTestDB(t)
	srcDir := t.TempDir()
	archiveDir := filepath.Join(t.TempDir(), "archive")
	im := NewImporter(db, archiveDir, nil)

	src := writePDF(t, srcDir, "2.3-Han2005.pdf", "%PDF-1.4 fake body")
	res, err := im.Import(context.Background(), src)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Duplicate {
		t.Error("fresh import flagged as duplicate")
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source file should be gone after import")
	}
	if _, err := os.Stat(res.ArchivePath); err != nil {
		t.Errorf("archived file missing: %v", err)
	}

	doc, err := db.DocumentByHash(context.Background(), mustHash(t, res.ArchivePath))
	if err != nil {
		t.Fatalf("DocumentByHash: %v", err)
	}
	if doc.RefNo != "2.3-Han2005" {
		t.Errorf("ref_no = %q, want 2.3-Han2005", doc.RefNo)
	}
}

func TestImportDuplicateContent(t *testing.T) {
	db := openTestDB(t)
	srcDir := t.TempDir()
	archiveDir := filepath.Join(t.TempDir(), "archive")
	im := NewImporter(db, archiveDir, nil)

	first := writePDF(t, srcDir, "a.pdf", "same bytes")
	res1, err := im.Import(context.Background(), first)
	if err != nil {
		t.Fatalf("Import first: %v", err)
	}

	// Same content under a new filename: dedup, remove source, keep one copy.
	second := writePDF(t, srcDir, "b.pdf", "same bytes")
	res2, err := im.Import(context.Background(), second)
	if err != nil {
		t.Fatalf("Import second: %v", err)
	}
	if !res2.Duplicate {
		t.Error("re-import of identical content not flagged as duplicate")
	}
	if res2.DocID != res1.DocID {
		t.Errorf("duplicate doc id = %d, want %d", res2.DocID, res1.DocID)
	}
	if _, err := os.Stat(second); !os.IsNotExist(err) {
		t.Error("duplicate source file should be removed")
	}
}

func TestImportNameCollision(t *testing.T) {
	db := openTestDB(t)
	srcDir := t.TempDir()
	archiveDir := filepath.Join(t.TempDir(), "archive")
	im := NewImporter(db, archiveDir, nil)

	// Two different papers that happen to share a filename.
	first := writePDF(t, srcDir, "paper.pdf", "contents one")
	if _, err := im.Import(context.Background(), first); err != nil {
		t.Fatalf("Import first: %v", err)
	}
	second := writePDF(t, srcDir, "paper.pdf", "contents two")
	res, err := im.Import(context.Background(), second)
	if err != nil {
		t.Fatalf("Import second: %v", err)
	}
	if filepath.Base(res.ArchivePath) != "paper_1.pdf" {
		t.Errorf("collision rename = %q, want paper_1.pdf", filepath.Base(res.ArchivePath))
	}
}

func TestImportRejectsNonPDF(t *testing.T) {
	db := openTestDB(t)
	im := NewImporter(db, t.TempDir(), nil)
	src := writePDF(t, t.TempDir(), "notes.txt", "not a pdf")
	if _, err := im.Import(context.Background(), src); err == nil {
		t.Fatal("expected error for non-PDF extension")
	}
}

func mustHash(t *testing.T, path string) string {
	t.Helper()
	h, err := hashFile(path)
	if err != nil {
		t.Fatalf("hashFile: %v", err)
	}
	return h
}
