// Package rules holds the platform registry: for every supported assay
// platform, the ordered extraction rules that turn its archive into
// output tables. Everything here is built once at startup and never
// mutated.
package rules

import (
	"regexp"
	"strings"
)

// Shape selects the extraction algorithm for a rule.
type Shape uint8

const (
	Matrix Shape = iota
	Segment
	Clinical
	PassThrough
)

func (s Shape) String() string {
	switch s {
	case Matrix:
		return "matrix"
	case Segment:
		return "segment"
	case Clinical:
		return "clinical"
	case PassThrough:
		return "passthrough"
	default:
		return "unknown"
	}
}

// Layout refines how a matrix or segment file is laid out on disk.
type Layout uint8

const (
	// LayoutAuto detects a two-row or single-row matrix header.
	LayoutAuto Layout = iota
	// LayoutNamedField reads a single header and names the column after
	// the full file basename.
	LayoutNamedField
	// LayoutPreMerged keeps every column after the index as a sample.
	LayoutPreMerged
	// LayoutKeyedTwoRow reads the sample key from line one and field
	// names from line two. A later file with the same key replaces the
	// earlier column.
	LayoutKeyedTwoRow
	// LayoutFileKeyed tags every segment with the source file basename.
	LayoutFileKeyed
	// LayoutFirstColumnKey takes the sample from the first column.
	LayoutFirstColumnKey
	// LayoutSampleColumn takes the sample from a "Sample" column.
	LayoutSampleColumn
)

func (l Layout) String() string {
	switch l {
	case LayoutAuto:
		return "auto"
	case LayoutNamedField:
		return "namedField"
	case LayoutPreMerged:
		return "preMerged"
	case LayoutKeyedTwoRow:
		return "keyedTwoRow"
	case LayoutFileKeyed:
		return "fileKeyed"
	case LayoutFirstColumnKey:
		return "firstColumnKey"
	case LayoutSampleColumn:
		return "sampleColumn"
	default:
		return "unknown"
	}
}

// CommonSynonyms normalizes header names before probe field matching.
var CommonSynonyms = map[string]string{
	"mean":         "seg.mean",
	"Segment_Mean": "seg.mean",
	"Start":        "loc.start",
	"End":          "loc.end",
	"Chromosome":   "chrom",
}

// Canonical segment field names after normalization.
const (
	FieldChrom = "chrom"
	FieldStart = "loc.start"
	FieldEnd   = "loc.end"
)

// ControlSamples are reference sample prefixes dropped when control
// filtering is enabled. Matching is a literal prefix test.
var ControlSamples = []string{
	"TCGA-07-0249", "TCGA-07-7600", "TCGA-AV-A03E", "TCGA-AV-A3E6",
	"TCGA-AV-A03D", "TCGA-07-0227", "231 Control", "231 IGF",
	"468 Control", "468 EGF", "Control_Jurkat", "Jurkat Control",
	"Jurkat Fas", "Mixed Lysate", "BD_Human_Tissue_Ref_RNA_Extract",
	"BioChain_RtHanded_Total_", "tratagene_Cell_Line_Hum_Ref_RNA_Extract",
}

// IsControl reports whether key starts with any control prefix.
func IsControl(key string) bool {
	for _, prefix := range ControlSamples {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// IDFFields maps IDF row labels to descriptor metadata keys.
var IDFFields = map[string]string{
	"Investigation Title":    "title",
	"Experiment Description": "experimentalDescription",
	"Person Affiliation":     "dataProducer",
	"Date of Experiment":     "experimentalDate",
}

// ControlMaterials are SDRF Material Type values whose rows carry no
// sample aliases.
var ControlMaterials = []string{"genomic_DNA", "total_RNA", "MDA cell line"}

// GlobalExcludes are searched against every data file basename.
var GlobalExcludes = []*regexp.Regexp{
	regexp.MustCompile(`MANIFEST.txt$`),
	regexp.MustCompile(`CHANGES_DCC.txt$`),
	regexp.MustCompile(`README_DCC.txt$`),
	regexp.MustCompile(`README.txt$`),
	regexp.MustCompile(`CHANGES.txt$`),
	regexp.MustCompile(`DCC_ALTERED_FILES.txt$`),
	regexp.MustCompile(`.wig$`),
	regexp.MustCompile(`DESCRIPTIO$`),
}

// Rule describes how one dataSubType is extracted from an archive.
type Rule struct {
	DataSubType  string
	Shape        Shape
	Layout       Layout
	Synonyms     map[string]string
	ProbeFields  []string
	ValueName    string // segment value column header
	AuxField     string // optional extra segment column
	ProbeMap     string
	SampleMap    string
	Include      *regexp.Regexp // matched from the start of the basename
	Exclude      *regexp.Regexp // matched from the start of the full path
	NameTemplate string         // "{basename}" is replaced by Name
	Extension    string
	Assembly     string
}

// Name renders the rule's output file name for an archive basename.
func (r *Rule) Name(basename string) string {
	return strings.ReplaceAll(r.NameTemplate, "{basename}", basename)
}

// Normalize maps a header name through the rule's synonyms.
func (r *Rule) Normalize(name string) string {
	synonyms := r.Synonyms
	if synonyms == nil {
		synonyms = CommonSynonyms
	}
	if v, ok := synonyms[name]; ok {
		return v
	}
	return name
}

// Wants reports whether a header name, after normalization, is one of
// the rule's probe fields.
func (r *Rule) Wants(name string) bool {
	n := r.Normalize(name)
	for _, f := range r.ProbeFields {
		if r.Normalize(f) == n {
			return true
		}
	}
	return false
}

// Accepts applies the include and exclude patterns.
func (r *Rule) Accepts(basename, path string) bool {
	if r.Include != nil && !r.Include.MatchString(basename) {
		return false
	}
	if r.Exclude != nil && r.Exclude.MatchString(path) {
		return false
	}
	return true
}

// PlatformSpec is the ordered rule set of one platform.
type PlatformSpec struct {
	Name         string
	Rules        []Rule
	TargetSuffix string // trimmed from SDRF extract names, e.g. ".SD"
}

// Rule returns the rule for a dataSubType.
func (p *PlatformSpec) Rule(dataSubType string) (*Rule, bool) {
	for i := range p.Rules {
		if p.Rules[i].DataSubType == dataSubType {
			return &p.Rules[i], true
		}
	}
	return nil, false
}

// Shape returns the shape shared by the platform's rules.
func (p *PlatformSpec) Shape() Shape {
	if len(p.Rules) == 0 {
		return PassThrough
	}
	return p.Rules[0].Shape
}

// anchored compiles pattern so that it only matches from the start of
// the input.
func anchored(pattern string) *regexp.Regexp {
	if pattern == "" {
		return nil
	}
	return regexp.MustCompile(`^(?:` + pattern + `)`)
}
