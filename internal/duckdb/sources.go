package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Source records one imported input file.
type Source struct {
	FileFingerprint
	Kind   string
	Labels int64
}

// HasSource reports whether fp was already imported for kind and the file
// is unchanged since.
func (s *Store) HasSource(fp FileFingerprint, kind string) (bool, error) {
	var size int64
	var mod time.Time
	err := s.db.QueryRow("SELECT size, mod_time FROM label_sources WHERE path=? AND kind=?",
		fp.Path, kind).Scan(&size, &mod)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query source: %w", err)
	}
	return size == fp.Size && mod.Equal(fp.ModTime.UTC().Truncate(time.Microsecond)), nil
}

// RecordSource stores or replaces the import record for fp.
func (s *Store) RecordSource(fp FileFingerprint, kind string, labels int64) error {
	if _, err := s.db.Exec("DELETE FROM label_sources WHERE path=? AND kind=?", fp.Path, kind); err != nil {
		return fmt.Errorf("replace source: %w", err)
	}
	if _, err := s.db.Exec("INSERT INTO label_sources VALUES (?, ?, ?, ?, ?)",
		fp.Path, fp.Size, fp.ModTime.UTC().Truncate(time.Microsecond), kind, labels); err != nil {
		return fmt.Errorf("insert source: %w", err)
	}
	return nil
}

// Sources lists imported files in path order.
func (s *Store) Sources() ([]Source, error) {
	rows, err := s.db.Query("SELECT path, size, mod_time, kind, labels FROM label_sources ORDER BY path, kind")
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.Path, &src.Size, &src.ModTime, &src.Kind, &src.Labels); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return out, nil
}
