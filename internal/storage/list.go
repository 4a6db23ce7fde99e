package storage

import (
	"database/sql"
	"time"
)

// ListRuns returns a lightweight list of runs with record counts.
func (db *DB) ListRuns(limit, offset int) ([]RunRow, error) {
	const q = `
		SELECT r.id, r.started_at, r.source, r.version,
		       (SELECT COUNT(1) FROM records c WHERE c.run_id = r.id) AS records
		  FROM runs r
		 ORDER BY r.started_at DESC, r.id DESC
		 LIMIT ? OFFSET ?`
	rows, err := db.conn.Query(q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var rr RunRow
		var startedAtStr string
		if err := rows.Scan(&rr.ID, &startedAtStr, &rr.Source, &rr.Version, &rr.Records); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, startedAtStr); err == nil {
			rr.StartedAt = t
		} else if t2, err2 := time.Parse(time.RFC3339, startedAtStr); err2 == nil {
			rr.StartedAt = t2
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

// ListRecords returns records for a run, optionally filtered by category
// and a minimum risk level, ordered by descending score for triage.
func (db *DB) ListRecords(runID, category, minLevel string) ([]RecordRow, error) {
	const q = `
		SELECT vm_id, name, power_state, category, confidence, risk_score, risk_level, rule_name, reason
		  FROM records
		 WHERE run_id = ?
		   AND (? = '' OR category = ?)
		   AND (CASE risk_level WHEN 'High' THEN 3 WHEN 'Medium' THEN 2 ELSE 1 END)
		       >= (CASE ? WHEN 'High' THEN 3 WHEN 'Medium' THEN 2 ELSE 1 END)
		 ORDER BY risk_score DESC, vm_id`
	rows, err := db.conn.Query(q, runID, category, category, minLevel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecordRow
	for rows.Next() {
		var r RecordRow
		if err := rows.Scan(&r.VMID, &r.Name, &r.PowerState, &r.Category, &r.Confidence, &r.RiskScore, &r.RiskLevel, &r.RuleName, &r.Reason); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// HasRun reports whether a run id exists.
func (db *DB) HasRun(id string) (bool, error) {
	const q = `SELECT 1 FROM runs WHERE id = ? LIMIT 1`
	var one int
	err := db.conn.QueryRow(q, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}
