// Package output writes mutation tables as tab-delimited text for
// downstream plotting.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-muts/internal/genes"
	"github.com/inodb/vibe-muts/internal/mutation"
	"github.com/inodb/vibe-muts/internal/report"
)

// TabWriter writes per-mutation labels in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited label writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"Hugo_Symbol",
			"Gene_Category",
			"Variant_Classification",
			"Tumor_Sample_Barcode",
			"Kind",
			"Notation",
			"Mutation_Type",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single label.
func (tw *TabWriter) Write(l report.Label) error {
	values := []string{
		orDash(l.Gene),
		l.Category.String(),
		orDash(l.Class),
		orDash(l.Sample),
		l.Kind.String(),
		orDash(l.Notation),
		string(l.Type),
	}
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// WriteLabels writes a header and every label.
func WriteLabels(w io.Writer, labels []report.Label) error {
	tw := NewTabWriter(w)
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, l := range labels {
		if err := tw.Write(l); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteFrequencyTable writes a two-column mutation_type/count table in
// table order.
func WriteFrequencyTable(w io.Writer, t *mutation.FrequencyTable) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("mutation_type\tcount\n")
	for _, e := range t.Entries() {
		bw.WriteString(string(e.Type))
		bw.WriteByte('\t')
		bw.WriteString(strconv.Itoa(e.Count))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteCategoryTable writes a mutation type by gene category cross table.
// Rows follow the order of overall; a total column closes each row.
func WriteCategoryTable(w io.Writer, overall *mutation.FrequencyTable, byCategory map[genes.Category]*mutation.FrequencyTable) error {
	bw := bufio.NewWriter(w)

	header := []string{"mutation_type"}
	for _, c := range genes.Categories {
		header = append(header, c.String())
	}
	header = append(header, "total")
	bw.WriteString(strings.Join(header, "\t") + "\n")

	for _, e := range overall.Entries() {
		row := []string{string(e.Type)}
		for _, c := range genes.Categories {
			n := 0
			if t := byCategory[c]; t != nil {
				n = t.Get(e.Type)
			}
			row = append(row, strconv.Itoa(n))
		}
		row = append(row, strconv.Itoa(e.Count))
		bw.WriteString(strings.Join(row, "\t") + "\n")
	}
	return bw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
