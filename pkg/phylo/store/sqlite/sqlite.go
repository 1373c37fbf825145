package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/phylobot/phylo/pkg/phylo/internalerr"
	"github.com/phylobot/phylo/pkg/phylo/record"
	"github.com/phylobot/phylo/pkg/phylo/registry"
	"github.com/phylobot/phylo/pkg/phylo/store"
)

// sqliteStore implements store.Store on a single SQLite file.
type sqliteStore struct {
	db *sql.DB
}

// Open opens (or creates) a run archive with WAL mode enabled.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist.
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	batch_id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_records (
	batch_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	record_id TEXT NOT NULL,
	description TEXT,
	hints TEXT,
	overall_confidence REAL NOT NULL,
	PRIMARY KEY(batch_id, record_id),
	FOREIGN KEY(batch_id) REFERENCES runs(batch_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_assignments (
	batch_id TEXT NOT NULL,
	record_id TEXT NOT NULL,
	level INTEGER NOT NULL,
	category TEXT NOT NULL,
	confidence REAL NOT NULL,
	source TEXT NOT NULL,
	evidence TEXT,
	PRIMARY KEY(batch_id, record_id, level),
	FOREIGN KEY(batch_id) REFERENCES runs(batch_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_conflicts (
	batch_id TEXT NOT NULL,
	record_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	level_a INTEGER NOT NULL,
	level_b INTEGER NOT NULL,
	reason TEXT,
	FOREIGN KEY(batch_id) REFERENCES runs(batch_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_clusters (
	batch_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	level INTEGER NOT NULL,
	label TEXT NOT NULL,
	cohesion REAL NOT NULL,
	members TEXT NOT NULL,
	FOREIGN KEY(batch_id) REFERENCES runs(batch_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_skipped (
	batch_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	record_id TEXT,
	reason TEXT NOT NULL,
	FOREIGN KEY(batch_id) REFERENCES runs(batch_id) ON DELETE CASCADE
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun stores a complete run under its batch id.
func (s *sqliteStore) SaveRun(ctx context.Context, run store.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE batch_id=?`, run.BatchID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return fmt.Errorf("run %s: %w", run.BatchID, internalerr.ErrDuplicate)
	}

	created := run.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (batch_id, created_at) VALUES (?, ?)`,
		run.BatchID, created.UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	if err := insertRecords(ctx, tx, run.BatchID, run.Records); err != nil {
		return err
	}
	if err := insertClusters(ctx, tx, run.BatchID, run.Clusters); err != nil {
		return err
	}
	if err := insertSkipped(ctx, tx, run.BatchID, run.Skipped); err != nil {
		return err
	}
	return tx.Commit()
}

func insertRecords(ctx context.Context, tx *sql.Tx, batchID string, records []record.ClassifiedRecord) error {
	if len(records) == 0 {
		return nil
	}
	recStmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_records (batch_id, position, record_id, description, hints, overall_confidence)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer recStmt.Close()

	asgStmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_assignments (batch_id, record_id, level, category, confidence, source, evidence)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer asgStmt.Close()

	cfStmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_conflicts (batch_id, record_id, position, level_a, level_b, reason)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer cfStmt.Close()

	for pos, rec := range records {
		hints, err := encodeJSON(rec.Hints)
		if err != nil {
			return err
		}
		if _, err := recStmt.ExecContext(ctx, batchID, pos, rec.ID, rec.Description, hints, rec.OverallConfidence); err != nil {
			return err
		}
		for _, a := range rec.Assignments {
			evidence, err := encodeJSON(a.Evidence)
			if err != nil {
				return err
			}
			if _, err := asgStmt.ExecContext(ctx, batchID, rec.ID, int(a.Level), a.Category, a.Confidence, string(a.Source), evidence); err != nil {
				return err
			}
		}
		for i, c := range rec.Conflicts {
			if _, err := cfStmt.ExecContext(ctx, batchID, rec.ID, i, int(c.LevelA), int(c.LevelB), c.Reason); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertClusters(ctx context.Context, tx *sql.Tx, batchID string, clusters []record.ClusterGroup) error {
	if len(clusters) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_clusters (batch_id, position, level, label, cohesion, members)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for pos, g := range clusters {
		members, err := encodeJSON(g.Members)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, batchID, pos, int(g.Level), g.Label, g.Cohesion, members); err != nil {
			return err
		}
	}
	return nil
}

func insertSkipped(ctx context.Context, tx *sql.Tx, batchID string, skipped []record.Skipped) error {
	if len(skipped) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_skipped (batch_id, position, record_id, reason)
VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sk := range skipped {
		if _, err := stmt.ExecContext(ctx, batchID, sk.Index, sk.ID, sk.Reason); err != nil {
			return err
		}
	}
	return nil
}

// GetRun loads a stored run with records in their original order and
// assignments in level order.
func (s *sqliteStore) GetRun(ctx context.Context, batchID string) (store.Run, error) {
	run := store.Run{BatchID: batchID}

	var created string
	err := s.db.QueryRowContext(ctx, `SELECT created_at FROM runs WHERE batch_id=?`, batchID).Scan(&created)
	if err == sql.ErrNoRows {
		return store.Run{}, fmt.Errorf("run %s: %w", batchID, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Run{}, err
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return store.Run{}, err
	}

	if run.Records, err = s.loadRecords(ctx, batchID); err != nil {
		return store.Run{}, err
	}
	if run.Clusters, err = s.loadClusters(ctx, batchID); err != nil {
		return store.Run{}, err
	}
	if run.Skipped, err = s.loadSkipped(ctx, batchID); err != nil {
		return store.Run{}, err
	}
	return run, nil
}

func (s *sqliteStore) loadRecords(ctx context.Context, batchID string) ([]record.ClassifiedRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT record_id, description, hints, overall_confidence
FROM run_records WHERE batch_id=? ORDER BY position`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []record.ClassifiedRecord
	index := make(map[string]int)
	for rows.Next() {
		var rec record.ClassifiedRecord
		var hints sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Description, &hints, &rec.OverallConfidence); err != nil {
			return nil, err
		}
		if err := decodeJSON(hints.String, &rec.Hints); err != nil {
			return nil, err
		}
		index[rec.ID] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachAssignments(ctx, batchID, records, index); err != nil {
		return nil, err
	}
	if err := s.attachConflicts(ctx, batchID, records, index); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *sqliteStore) attachAssignments(ctx context.Context, batchID string, records []record.ClassifiedRecord, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, `
SELECT record_id, level, category, confidence, source, evidence
FROM run_assignments WHERE batch_id=? ORDER BY record_id, level`, batchID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var recordID, source string
		var level int
		var a record.LevelAssignment
		var evidence sql.NullString
		if err := rows.Scan(&recordID, &level, &a.Category, &a.Confidence, &source, &evidence); err != nil {
			return err
		}
		a.Level = registry.Level(level)
		a.Source = record.Source(source)
		if err := decodeJSON(evidence.String, &a.Evidence); err != nil {
			return err
		}
		i, ok := index[recordID]
		if !ok {
			return fmt.Errorf("assignment for unknown record %s: %w", recordID, internalerr.ErrNotFound)
		}
		records[i].Assignments = append(records[i].Assignments, a)
	}
	return rows.Err()
}

func (s *sqliteStore) attachConflicts(ctx context.Context, batchID string, records []record.ClassifiedRecord, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, `
SELECT record_id, level_a, level_b, reason
FROM run_conflicts WHERE batch_id=? ORDER BY record_id, position`, batchID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var recordID string
		var levelA, levelB int
		var c record.Conflict
		if err := rows.Scan(&recordID, &levelA, &levelB, &c.Reason); err != nil {
			return err
		}
		c.LevelA = registry.Level(levelA)
		c.LevelB = registry.Level(levelB)
		i, ok := index[recordID]
		if !ok {
			return fmt.Errorf("conflict for unknown record %s: %w", recordID, internalerr.ErrNotFound)
		}
		records[i].Conflicts = append(records[i].Conflicts, c)
	}
	return rows.Err()
}

func (s *sqliteStore) loadClusters(ctx context.Context, batchID string) ([]record.ClusterGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT level, label, cohesion, members
FROM run_clusters WHERE batch_id=? ORDER BY position`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clusters []record.ClusterGroup
	for rows.Next() {
		var g record.ClusterGroup
		var level int
		var members string
		if err := rows.Scan(&level, &g.Label, &g.Cohesion, &members); err != nil {
			return nil, err
		}
		g.Level = registry.Level(level)
		if err := decodeJSON(members, &g.Members); err != nil {
			return nil, err
		}
		clusters = append(clusters, g)
	}
	return clusters, rows.Err()
}

func (s *sqliteStore) loadSkipped(ctx context.Context, batchID string) ([]record.Skipped, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT position, record_id, reason
FROM run_skipped WHERE batch_id=? ORDER BY position`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skipped []record.Skipped
	for rows.Next() {
		var sk record.Skipped
		var recordID sql.NullString
		if err := rows.Scan(&sk.Index, &recordID, &sk.Reason); err != nil {
			return nil, err
		}
		sk.ID = recordID.String
		skipped = append(skipped, sk)
	}
	return skipped, rows.Err()
}

// ListRuns returns run summaries, newest first.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.RunInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT batch_id, created_at,
	(SELECT COUNT(*) FROM run_records r WHERE r.batch_id = runs.batch_id),
	(SELECT COUNT(*) FROM run_skipped k WHERE k.batch_id = runs.batch_id)
FROM runs ORDER BY created_at DESC, batch_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []store.RunInfo
	for rows.Next() {
		var info store.RunInfo
		var created string
		if err := rows.Scan(&info.BatchID, &created, &info.Records, &info.Skipped); err != nil {
			return nil, err
		}
		if info.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// LevelDistribution counts assigned categories per level for one run.
func (s *sqliteStore) LevelDistribution(ctx context.Context, batchID string) (map[registry.Level]map[string]int, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE batch_id=?`, batchID).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("run %s: %w", batchID, internalerr.ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT level, category, COUNT(*)
FROM run_assignments WHERE batch_id=?
GROUP BY level, category ORDER BY level, category`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dist := make(map[registry.Level]map[string]int)
	for rows.Next() {
		var level, count int
		var category string
		if err := rows.Scan(&level, &category, &count); err != nil {
			return nil, err
		}
		l := registry.Level(level)
		if dist[l] == nil {
			dist[l] = make(map[string]int)
		}
		dist[l][category] = count
	}
	return dist, rows.Err()
}

// DeleteRun removes a run and all of its rows.
func (s *sqliteStore) DeleteRun(ctx context.Context, batchID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE batch_id=?`, batchID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", batchID, internalerr.ErrNotFound)
	}
	return nil
}

func encodeJSON(v interface{}) (sql.NullString, error) {
	switch val := v.(type) {
	case map[string]string:
		if len(val) == 0 {
			return sql.NullString{}, nil
		}
	case []string:
		if len(val) == 0 {
			return sql.NullString{}, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeJSON(data string, v interface{}) error {
	if data == "" {
		return nil
	}
	return json.Unmarshal([]byte(data), v)
}
