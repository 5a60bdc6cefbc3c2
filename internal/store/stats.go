package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string      `json:"db_path"`
	DBSizeBytes int64       `json:"db_size_bytes"`
	QuotaBytes  int64       `json:"quota_bytes"`
	UsedBytes   int64       `json:"used_bytes"`
	Items       []ItemStats `json:"items"`
	Characters  int         `json:"characters"`
	Pathways    int         `json:"pathways"`
}

// ItemStats holds the size of one key-value item.
type ItemStats struct {
	Key   string `json:"key"`
	Bytes int64  `json:"bytes"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, QuotaBytes: s.quota}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM characters`).Scan(&st.Characters)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM learning_pathways`).Scan(&st.Pathways)

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, length(CAST(value AS BLOB)) + length(CAST(key AS BLOB)) AS bytes
		FROM kv ORDER BY bytes DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var it ItemStats
		rows.Scan(&it.Key, &it.Bytes)
		st.UsedBytes += it.Bytes
		st.Items = append(st.Items, it)
	}

	return st, rows.Err()
}
