package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-muts/internal/mutation"
	"github.com/inodb/vibe-muts/internal/report"
)

// WriteLabels batch-inserts labels into DuckDB using the Appender API.
// Sequence numbers continue after the labels already stored so that
// first-encounter order spans every import.
func (s *Store) WriteLabels(labels []report.Label) error {
	if len(labels) == 0 {
		return nil
	}

	var next int64
	if err := s.db.QueryRow("SELECT COALESCE(MAX(seq) + 1, 0) FROM mutation_labels").Scan(&next); err != nil {
		return fmt.Errorf("query next seq: %w", err)
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "mutation_labels")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, l := range labels {
		if err := appender.AppendRow(
			next+int64(l.Seq), l.Sample, l.Gene, l.Category.String(),
			l.Kind.String(), l.Notation, string(l.Type),
		); err != nil {
			return fmt.Errorf("append label: %w", err)
		}
	}

	return appender.Flush()
}

// LabelCount returns the number of stored labels.
func (s *Store) LabelCount() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM mutation_labels").Scan(&n); err != nil {
		return 0, fmt.Errorf("count labels: %w", err)
	}
	return n, nil
}

// Clear removes all stored labels and source records.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM mutation_labels"); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM label_sources")
	return err
}

// CountTypes returns the frequency table of stored labels for a gene
// category ("oncogene", "tsg", "other"). An empty category counts all labels.
func (s *Store) CountTypes(category string) (*mutation.FrequencyTable, error) {
	if category == "" {
		return s.countTypes("", nil)
	}
	return s.countTypes("WHERE gene_category=?", []any{category})
}

// CountTypesByGene returns the frequency table of stored labels for one gene.
func (s *Store) CountTypesByGene(gene string) (*mutation.FrequencyTable, error) {
	return s.countTypes("WHERE gene=?", []any{gene})
}

// countTypes orders by count and then by first occurrence, matching
// mutation.Count on the same label sequence.
func (s *Store) countTypes(where string, args []any) (*mutation.FrequencyTable, error) {
	rows, err := s.db.Query(`SELECT mutation_type, COUNT(*) AS n, MIN(seq) AS first
		FROM mutation_labels `+where+`
		GROUP BY mutation_type
		ORDER BY n DESC, first`, args...)
	if err != nil {
		return nil, fmt.Errorf("query type counts: %w", err)
	}
	defer rows.Close()

	var entries []mutation.Entry
	for rows.Next() {
		var typ string
		var n, first int64
		if err := rows.Scan(&typ, &n, &first); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		entries = append(entries, mutation.Entry{Type: mutation.Type(typ), Count: int(n)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate type counts: %w", err)
	}
	return mutation.NewFrequencyTable(entries), nil
}
