// Package genes provides cancer reference gene sets and gene classification.
package genes

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Default file names of the Vogelstein et al. (Science 2013, table S2A) gene lists.
const (
	OncogeneFileName = "oncogenes_vogelstein.txt"
	TSGFileName      = "tsg_vogelstein.txt"
)

// ErrReferenceData is returned when a reference gene list cannot be read.
var ErrReferenceData = errors.New("reference gene data unavailable")

// ReferenceSets holds the curated oncogene and tumor suppressor gene sets.
// It is immutable after construction and safe for concurrent use.
type ReferenceSets struct {
	oncogenes map[string]struct{}
	tsgs      map[string]struct{}
}

// NewReferenceSets builds reference sets from in-memory symbol lists.
// Symbols are trimmed; empty symbols are dropped and duplicates collapse.
func NewReferenceSets(oncogenes, tsgs []string) *ReferenceSets {
	return &ReferenceSets{
		oncogenes: toSet(oncogenes),
		tsgs:      toSet(tsgs),
	}
}

// LoadReferenceSets reads the oncogene and tumor suppressor gene lists.
// Each file holds one gene symbol per line with no header.
func LoadReferenceSets(oncogenePath, tsgPath string) (*ReferenceSets, error) {
	oncogenes, err := ReadGeneList(oncogenePath)
	if err != nil {
		return nil, err
	}
	tsgs, err := ReadGeneList(tsgPath)
	if err != nil {
		return nil, err
	}
	return NewReferenceSets(oncogenes, tsgs), nil
}

// ReadGeneList reads a line-delimited gene list file.
func ReadGeneList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open gene list %s: %w", ErrReferenceData, path, err)
	}
	defer f.Close()

	symbols, err := parseGeneList(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read gene list %s: %w", ErrReferenceData, path, err)
	}
	return symbols, nil
}

// parseGeneList returns trimmed symbols, skipping blank and comment lines.
func parseGeneList(r io.Reader) ([]string, error) {
	var symbols []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		symbols = append(symbols, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return symbols, nil
}

func toSet(symbols []string) map[string]struct{} {
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		set[s] = struct{}{}
	}
	return set
}

// IsOncogene reports whether gene is in the oncogene set.
func (r *ReferenceSets) IsOncogene(gene string) bool {
	_, ok := r.oncogenes[gene]
	return ok
}

// IsTSG reports whether gene is in the tumor suppressor set.
func (r *ReferenceSets) IsTSG(gene string) bool {
	_, ok := r.tsgs[gene]
	return ok
}

// Oncogenes returns the oncogene symbols in sorted order.
func (r *ReferenceSets) Oncogenes() []string {
	return sortedKeys(r.oncogenes)
}

// TSGs returns the tumor suppressor symbols in sorted order.
func (r *ReferenceSets) TSGs() []string {
	return sortedKeys(r.tsgs)
}

// Overlap returns symbols present in both sets, sorted.
// Such genes classify as oncogenes.
func (r *ReferenceSets) Overlap() []string {
	var both []string
	for g := range r.oncogenes {
		if _, ok := r.tsgs[g]; ok {
			both = append(both, g)
		}
	}
	sort.Strings(both)
	return both
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
