// Package maf provides MAF (Mutation Annotation Format) file parsing functionality.
package maf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Standard MAF column names
const (
	ColHugoSymbol            = "Hugo_Symbol"
	ColVariantClassification = "Variant_Classification"
	ColTumorSampleBarcode    = "Tumor_Sample_Barcode"
	ColHGVSp                 = "HGVSp"
	ColHGVSpShort            = "HGVSp_Short"
	ColHGVSc                 = "HGVSc"
)

// ColumnIndices holds the indices of the MAF columns used for mutation
// classification. Absent columns are -1.
type ColumnIndices struct {
	HugoSymbol            int
	VariantClassification int
	TumorSampleBarcode    int
	HGVSp                 int
	HGVSpShort            int
	HGVSc                 int
}

// Record holds the gene and notation fields of one MAF row.
type Record struct {
	Line                  int
	HugoSymbol            string
	VariantClassification string
	TumorSampleBarcode    string
	HGVSp                 string
	HGVSpShort            string
	HGVSc                 string
}

// ProteinNotation returns HGVSp_Short, falling back to HGVSp.
func (r *Record) ProteinNotation() string {
	if r.HGVSpShort != "" {
		return r.HGVSpShort
	}
	return r.HGVSp
}

// Parser reads records from a MAF file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	columns    ColumnIndices
}

// NewParser creates a new MAF parser for the given file.
// Supports both plain MAF and gzipped MAF (.maf.gz) files.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open maf file: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read maf header: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek maf file: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// readLine returns the next line without its terminator, or io.EOF.
func (p *Parser) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	p.lineNumber++
	return strings.TrimRight(line, "\r\n"), nil
}

// parseHeader reads and parses the MAF header line to find column indices.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.readLine()
		if err != nil {
			if err == io.EOF {
				return &ParseError{
					Line:    p.lineNumber,
					Message: "no header line found",
				}
			}
			return fmt.Errorf("read header: %w", err)
		}

		// Skip comment and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		return p.parseColumnIndices(line)
	}
}

// parseColumnIndices parses the header line to find column indices.
func (p *Parser) parseColumnIndices(headerLine string) error {
	p.columns = ColumnIndices{
		HugoSymbol:            -1,
		VariantClassification: -1,
		TumorSampleBarcode:    -1,
		HGVSp:                 -1,
		HGVSpShort:            -1,
		HGVSc:                 -1,
	}

	for i, col := range strings.Split(headerLine, "\t") {
		switch col {
		case ColHugoSymbol:
			p.columns.HugoSymbol = i
		case ColVariantClassification:
			p.columns.VariantClassification = i
		case ColTumorSampleBarcode:
			p.columns.TumorSampleBarcode = i
		case ColHGVSp:
			p.columns.HGVSp = i
		case ColHGVSpShort:
			p.columns.HGVSpShort = i
		case ColHGVSc:
			p.columns.HGVSc = i
		}
	}

	if p.columns.HugoSymbol == -1 {
		return &ParseError{
			Line:    p.lineNumber,
			Message: "required column 'Hugo_Symbol' not found in header",
		}
	}
	if p.columns.HGVSp == -1 && p.columns.HGVSpShort == -1 && p.columns.HGVSc == -1 {
		return &ParseError{
			Line:    p.lineNumber,
			Message: "no notation column (HGVSp_Short, HGVSp or HGVSc) found in header",
		}
	}

	return nil
}

// Next reads the next record from the MAF file.
// Returns nil, nil when there are no more records.
func (p *Parser) Next() (*Record, error) {
	for {
		line, err := p.readLine()
		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read maf line: %w", err)
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return p.parseLine(line)
	}
}

// ReadAll reads every remaining record.
func (p *Parser) ReadAll() ([]*Record, error) {
	var records []*Record
	for {
		r, err := p.Next()
		if err != nil {
			return nil, err
		}
		if r == nil {
			return records, nil
		}
		records = append(records, r)
	}
}

// parseLine parses a single MAF data line into a Record.
func (p *Parser) parseLine(line string) (*Record, error) {
	fields := strings.Split(line, "\t")

	if len(fields) <= p.columns.HugoSymbol {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", p.columns.HugoSymbol+1, len(fields)),
		}
	}

	field := func(idx int) string {
		if idx >= 0 && idx < len(fields) {
			return strings.TrimSpace(fields[idx])
		}
		return ""
	}

	return &Record{
		Line:                  p.lineNumber,
		HugoSymbol:            field(p.columns.HugoSymbol),
		VariantClassification: field(p.columns.VariantClassification),
		TumorSampleBarcode:    field(p.columns.TumorSampleBarcode),
		HGVSp:                 field(p.columns.HGVSp),
		HGVSpShort:            field(p.columns.HGVSpShort),
		HGVSc:                 field(p.columns.HGVSc),
	}, nil
}

// Columns returns the parsed column indices.
func (p *Parser) Columns() ColumnIndices {
	return p.columns
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during MAF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("maf parse error at line %d: %s", e.Line, e.Message)
}
