package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/structeng/cfst-extractor/constants"
	"github.com/structeng/cfst-extractor/internal/common"
	"github.com/structeng/cfst-extractor/internal/entity"
)

// Document is one processed paper in the dataset repository.
type Document struct {
	ID            int64
	RefNo         string
	Filename      string
	ArchivePath   string
	ContentHash   string
	Status        constants.DocStatus
	Reason        string
	PagesTotal    int
	PagesSelected int
	CreatedAt     time.Time
}

// RecordDocument inserts a document row, or returns the existing row's ID
// when a document with the same content hash was already recorded.
func (db *DB) RecordDocument(ctx context.Context, doc Document) (int64, bool, error) {
	var existingID int64
	err := db.QueryRowContext(ctx,
		"SELECT doc_id FROM documents WHERE content_hash = ?", doc.ContentHash,
	).Scan(&existingID)
	if err == nil {
		return existingID, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("check existing document: %w", err)
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO documents (ref_no, filename, archive_path, content_hash, status, reason, pages_total, pages_selected)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.RefNo, doc.Filename, doc.ArchivePath, doc.ContentHash, string(doc.Status), doc.Reason, doc.PagesTotal, doc.PagesSelected)
	if err != nil {
		return 0, false, fmt.Errorf("insert document: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("get document id: %w", err)
	}
	return id, false, nil
}

// UpdateDocumentStatus moves a document to a new routing status.
func (db *DB) UpdateDocumentStatus(ctx context.Context, docID int64, status constants.DocStatus, reason string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE documents SET status = ?, reason = ?, updated_at = CURRENT_TIMESTAMP WHERE doc_id = ?
	`, string(status), reason, docID)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// InsertSpecimens stores a batch of validated specimens under a document,
// all-or-nothing.
func (db *DB) InsertSpecimens(ctx context.Context, docID int64, specimens []entity.Specimen) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO specimens (
			doc_id, ref_no, family, fc_value, fc_type, specimen_label, fy,
			r_ratio, b, h, t, r0, length, e1, e2, n_exp, source_evidence,
			n_theory, xi, zone, needs_manual_check
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare specimen insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range specimens {
		_, err := stmt.ExecContext(ctx,
			docID, s.RefNo, string(s.Family),
			nullFloat(s.FcValue), nullString(s.FcType), nullString(s.SpecimenLabel), nullFloat(s.Fy),
			s.RRatio, nullFloat(s.B), nullFloat(s.H), nullFloat(s.T), nullFloat(s.R0), nullFloat(s.L),
			s.E1, s.E2, nullFloat(s.NExp), nullString(s.SourceEvidence),
			nullFloat(s.NTheory), nullFloat(s.Xi), string(s.Zone), s.NeedsManualCheck,
		)
		if err != nil {
			return fmt.Errorf("insert specimen %q: %w", s.RefNo, err)
		}
	}

	return tx.Commit()
}

// SpecimensByRef returns all stored specimens for a reference identifier,
// in insertion order.
func (db *DB) SpecimensByRef(ctx context.Context, refNo string) ([]entity.Specimen, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT ref_no, family, fc_value, fc_type, specimen_label, fy,
		       r_ratio, b, h, t, r0, length, e1, e2, n_exp, source_evidence,
		       n_theory, xi, zone, needs_manual_check
		FROM specimens WHERE ref_no = ? ORDER BY specimen_id
	`, refNo)
	if err != nil {
		return nil, fmt.Errorf("query specimens: %w", err)
	}
	defer rows.Close()

	var out []entity.Specimen
	for rows.Next() {
		var (
			s                        entity.Specimen
			family, zone             string
			fcType, label, evidence  sql.NullString
			fcValue, fy, b, h, t, r0 sql.NullFloat64
			length, nExp, nTh, xi    sql.NullFloat64
		)
		err := rows.Scan(
			&s.RefNo, &family, &fcValue, &fcType, &label, &fy,
			&s.RRatio, &b, &h, &t, &r0, &length, &s.E1, &s.E2, &nExp, &evidence,
			&nTh, &xi, &zone, &s.NeedsManualCheck,
		)
		if err != nil {
			return nil, fmt.Errorf("scan specimen: %w", err)
		}
		s.Family = constants.SectionFamily(family)
		s.Zone = constants.ReviewZone(zone)
		s.FcValue = floatPtr(fcValue)
		s.FcType = stringPtr(fcType)
		s.SpecimenLabel = stringPtr(label)
		s.Fy = floatPtr(fy)
		s.B = floatPtr(b)
		s.H = floatPtr(h)
		s.T = floatPtr(t)
		s.R0 = floatPtr(r0)
		s.L = floatPtr(length)
		s.NExp = floatPtr(nExp)
		s.NTheory = floatPtr(nTh)
		s.Xi = floatPtr(xi)
		out = append(out, s)
	}
	return out, rows.Err()
}

// DocumentByHash looks up a document by its content hash.
func (db *DB) DocumentByHash(ctx context.Context, hash string) (*Document, error) {
	var (
		doc    Document
		status string
	)
	err := db.QueryRowContext(ctx, `
		SELECT doc_id, ref_no, filename, archive_path, content_hash, status, reason, pages_total, pages_selected, created_at
		FROM documents WHERE content_hash = ?
	`, hash).Scan(&doc.ID, &doc.RefNo, &doc.Filename, &doc.ArchivePath, &doc.ContentHash,
		&status, &doc.Reason, &doc.PagesTotal, &doc.PagesSelected, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}
	doc.Status = constants.DocStatus(status)
	return &doc, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
