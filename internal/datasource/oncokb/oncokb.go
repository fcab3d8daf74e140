// Package oncokb provides OncoKB cancer gene list loading.
package oncokb

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/inodb/vibe-muts/internal/genes"
)

// Public OncoKB cancer gene list endpoint and its local file name.
const (
	CancerGeneListURL      = "https://www.oncokb.org/api/v1/utils/cancerGeneList.txt"
	CancerGeneListFileName = "cancerGeneList.tsv"
)

// Annotation holds OncoKB gene-level annotations.
type Annotation struct {
	HugoSymbol string
	GeneType   string // "ONCOGENE", "TSG", "ONCOGENE,TSG" or "ONCOGENE_AND_TSG"
}

// IsOncogene reports whether the gene type includes the oncogene role.
func (a *Annotation) IsOncogene() bool {
	return hasRole(a.GeneType, "ONCOGENE")
}

// IsTSG reports whether the gene type includes the tumor suppressor role.
func (a *Annotation) IsTSG() bool {
	return hasRole(a.GeneType, "TSG")
}

func hasRole(geneType, role string) bool {
	for _, part := range strings.FieldsFunc(strings.ToUpper(geneType), func(r rune) bool {
		return r == ',' || r == ' '
	}) {
		for _, p := range strings.Split(part, "_AND_") {
			if p == role {
				return true
			}
		}
	}
	return false
}

// CancerGeneList maps Hugo Symbol to Annotation.
type CancerGeneList map[string]*Annotation

// IsCancerGene returns true if the gene is in the cancer gene list.
func (c CancerGeneList) IsCancerGene(gene string) bool {
	_, ok := c[gene]
	return ok
}

// ReferenceSets converts the list into oncogene and tumor suppressor sets.
// Genes with both roles go into both sets; genes with neither are dropped.
func (c CancerGeneList) ReferenceSets() *genes.ReferenceSets {
	var oncogenes, tsgs []string
	for symbol, ann := range c {
		if ann.IsOncogene() {
			oncogenes = append(oncogenes, symbol)
		}
		if ann.IsTSG() {
			tsgs = append(tsgs, symbol)
		}
	}
	sort.Strings(oncogenes)
	sort.Strings(tsgs)
	return genes.NewReferenceSets(oncogenes, tsgs)
}

// LoadCancerGeneList loads an OncoKB cancerGeneList.tsv file.
// The TSV must have columns "Hugo Symbol" and "Gene Type" in the header.
func LoadCancerGeneList(path string) (CancerGeneList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open cancer gene list %s: %w", genes.ErrReferenceData, path, err)
	}
	defer f.Close()

	cgl, err := ParseCancerGeneList(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", genes.ErrReferenceData, path, err)
	}
	return cgl, nil
}

// ParseCancerGeneList parses cancer gene list TSV content.
func ParseCancerGeneList(r io.Reader) (CancerGeneList, error) {
	scanner := bufio.NewScanner(r)

	// Read header to find column indices
	if !scanner.Scan() {
		return nil, fmt.Errorf("cancer gene list: empty file")
	}
	header := strings.Split(strings.TrimRight(scanner.Text(), "\r"), "\t")

	hugoIdx := -1
	geneTypeIdx := -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "Hugo Symbol":
			hugoIdx = i
		case "Gene Type":
			geneTypeIdx = i
		}
	}
	if hugoIdx < 0 {
		return nil, fmt.Errorf("cancer gene list: missing 'Hugo Symbol' column")
	}
	if geneTypeIdx < 0 {
		return nil, fmt.Errorf("cancer gene list: missing 'Gene Type' column")
	}

	cgl := make(CancerGeneList)
	for scanner.Scan() {
		fields := strings.Split(strings.TrimRight(scanner.Text(), "\r"), "\t")
		if len(fields) <= hugoIdx || len(fields) <= geneTypeIdx {
			continue
		}
		hugo := strings.TrimSpace(fields[hugoIdx])
		geneType := strings.TrimSpace(fields[geneTypeIdx])
		if hugo == "" {
			continue
		}
		cgl[hugo] = &Annotation{
			HugoSymbol: hugo,
			GeneType:   geneType,
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading cancer gene list: %w", err)
	}

	return cgl, nil
}
