package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/structeng/cfst-extractor/constants"
)

// Importer moves processed PDFs from the source folder into the archive
// tree and records them in the dataset repository. Re-imports of the same
// content are detected by hash and skipped.
type Importer struct {
	db         *DB
	archiveDir string
	logger     *slog.Logger
}

func NewImporter(db *DB, archiveDir string, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{db: db, archiveDir: archiveDir, logger: logger}
}

// ImportResult reports what happened to one source file.
type ImportResult struct {
	DocID       int64
	ArchivePath string
	Duplicate   bool
}

// Import hashes the source PDF, moves it into the archive tree under a
// collision-safe name, and records the document. Duplicates (same content
// hash already recorded) are removed from the source folder without being
// copied again.
func (im *Importer) Import(ctx context.Context, srcPath string) (ImportResult, error) {
	ext := constants.NormalizeExt(filepath.Ext(srcPath))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return ImportResult{}, fmt.Errorf("import %s: unsupported extension %q", srcPath, ext)
	}

	hash, err := hashFile(srcPath)
	if err != nil {
		return ImportResult{}, fmt.Errorf("hash %s: %w", srcPath, err)
	}

	if existing, err := im.db.DocumentByHash(ctx, hash); err == nil {
		im.logger.Info("archive.import.duplicate",
			"path", srcPath, "hash", hash[:12], "doc_id", existing.ID)
		if err := os.Remove(srcPath); err != nil {
			return ImportResult{}, fmt.Errorf("remove duplicate source: %w", err)
		}
		return ImportResult{DocID: existing.ID, ArchivePath: existing.ArchivePath, Duplicate: true}, nil
	}

	if err := os.MkdirAll(im.archiveDir, 0o755); err != nil {
		return ImportResult{}, fmt.Errorf("create archive dir: %w", err)
	}
	dest, err := collisionSafePath(im.archiveDir, filepath.Base(srcPath))
	if err != nil {
		return ImportResult{}, err
	}
	if err := moveFile(srcPath, dest); err != nil {
		return ImportResult{}, fmt.Errorf("move %s into archive: %w", srcPath, err)
	}

	docID, _, err := im.db.RecordDocument(ctx, Document{
		RefNo:       refNoFromFilename(srcPath),
		Filename:    filepath.Base(srcPath),
		ArchivePath: dest,
		ContentHash: hash,
		Status:      constants.DocStatusQueued,
	})
	if err != nil {
		return ImportResult{}, err
	}

	im.logger.Info("archive.import.ok",
		"path", srcPath, "dest", dest, "hash", hash[:12], "doc_id", docID)
	return ImportResult{DocID: docID, ArchivePath: dest}, nil
}

// refNoFromFilename derives the reference identifier from the PDF filename,
// e.g. "2.3-Han2005.pdf" -> "2.3-Han2005".
func refNoFromFilename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// collisionSafePath returns dir/name, appending _1, _2, ... before the
// extension until the path is free.
func collisionSafePath(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := filepath.Join(dir, name)
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil && !os.IsNotExist(err) {
			return "", err
		}
		if i > 10000 {
			return "", fmt.Errorf("no free archive name for %s", name)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
}

// moveFile renames when possible and falls back to copy+remove across
// filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
