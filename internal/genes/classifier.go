package genes

// Category is the cancer role of a gene.
type Category int

const (
	Oncogene Category = iota
	TSG
	Other
)

// Categories lists every category in reporting order.
var Categories = []Category{Oncogene, TSG, Other}

// String returns the lowercase label used in output tables.
func (c Category) String() string {
	switch c {
	case Oncogene:
		return "oncogene"
	case TSG:
		return "tsg"
	default:
		return "other"
	}
}

// ParseCategory converts a label produced by String back into a Category.
func ParseCategory(s string) (Category, bool) {
	switch s {
	case "oncogene":
		return Oncogene, true
	case "tsg":
		return TSG, true
	case "other":
		return Other, true
	}
	return Other, false
}

// Classifier assigns categories to gene symbols using reference sets.
type Classifier struct {
	sets *ReferenceSets
}

// NewClassifier creates a classifier backed by the given reference sets.
func NewClassifier(sets *ReferenceSets) *Classifier {
	return &Classifier{sets: sets}
}

// Classify returns the category of gene. The oncogene set is checked
// before the tumor suppressor set.
func (c *Classifier) Classify(gene string) Category {
	if c.sets.IsOncogene(gene) {
		return Oncogene
	}
	if c.sets.IsTSG(gene) {
		return TSG
	}
	return Other
}

// ClassifyAll classifies each gene, preserving input order.
func (c *Classifier) ClassifyAll(genes []string) []Category {
	out := make([]Category, len(genes))
	for i, g := range genes {
		out[i] = c.Classify(g)
	}
	return out
}
