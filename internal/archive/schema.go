package archive

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Processed source papers. content_hash dedupes re-imports of the same PDF
-- under a different filename.
CREATE TABLE IF NOT EXISTS documents (
    doc_id INTEGER PRIMARY KEY AUTOINCREMENT,
    ref_no TEXT NOT NULL,
    filename TEXT NOT NULL,
    archive_path TEXT,
    content_hash TEXT NOT NULL UNIQUE,
    status TEXT NOT NULL,
    reason TEXT,
    pages_total INTEGER DEFAULT 0,
    pages_selected INTEGER DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_ref_no ON documents(ref_no);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);

-- One row per extracted specimen. Critical measurements stay NULL when the
-- paper does not report them.
CREATE TABLE IF NOT EXISTS specimens (
    specimen_id INTEGER PRIMARY KEY AUTOINCREMENT,
    doc_id INTEGER NOT NULL,
    ref_no TEXT NOT NULL,
    family TEXT NOT NULL,
    fc_value REAL,
    fc_type TEXT,
    specimen_label TEXT,
    fy REAL,
    r_ratio REAL NOT NULL DEFAULT 0,
    b REAL,
    h REAL,
    t REAL,
    r0 REAL,
    length REAL,
    e1 REAL NOT NULL DEFAULT 0,
    e2 REAL NOT NULL DEFAULT 0,
    n_exp REAL,
    source_evidence TEXT,
    n_theory REAL,
    xi REAL,
    zone TEXT,
    needs_manual_check BOOLEAN NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (doc_id) REFERENCES documents(doc_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_specimens_ref_no ON specimens(ref_no);
CREATE INDEX IF NOT EXISTS idx_specimens_family ON specimens(family);
CREATE INDEX IF NOT EXISTS idx_specimens_manual ON specimens(needs_manual_check) WHERE needs_manual_check = 1;
`
