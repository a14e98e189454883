package rules

import (
	"fmt"
	"sort"

	"github.com/nishad/tcgaimport/internal/errors"
)

const (
	targetsExclude = `.*targets$`
	sampleMap      = "tcga.iddag"
)

func matrixRule(dst, probeMap string, layout Layout, fields []string, include, exclude string) Rule {
	return Rule{
		DataSubType:  dst,
		Shape:        Matrix,
		Layout:       layout,
		ProbeFields:  fields,
		ProbeMap:     probeMap,
		SampleMap:    sampleMap,
		Include:      anchored(include),
		Exclude:      anchored(exclude),
		NameTemplate: "{basename}." + dst + ".tsv",
		Extension:    "tsv",
	}
}

func segmentRule(dst string, layout Layout, fields []string, include, exclude string) Rule {
	return Rule{
		DataSubType:  dst,
		Shape:        Segment,
		Layout:       layout,
		ProbeFields:  fields,
		ValueName:    "Segment_Mean",
		SampleMap:    sampleMap,
		Include:      anchored(include),
		Exclude:      anchored(exclude),
		NameTemplate: "{basename}." + dst + ".seg",
		Extension:    "seg",
	}
}

func snp6Rule(dst string, fields []string, valueName, aux, include string) Rule {
	r := segmentRule(dst, LayoutSampleColumn, fields, include, "")
	r.ValueName = valueName
	r.AuxField = aux
	r.Assembly = "hg19"
	r.NameTemplate = "{basename}.hg19." + dst + ".seg"
	return r
}

func clinicalRule(dst string) Rule {
	return Rule{
		DataSubType:  dst,
		Shape:        Clinical,
		SampleMap:    sampleMap,
		Include:      anchored(`.*.xml$`),
		NameTemplate: "{basename}." + dst + ".tsv",
		Extension:    "tsv",
	}
}

func mafRules() []Rule {
	return []Rule{{
		DataSubType:  "maf",
		Shape:        PassThrough,
		Include:      anchored(`.*.maf$`),
		NameTemplate: "{basename}.maf",
		Extension:    "maf",
	}}
}

func agilent() []Rule {
	return []Rule{matrixRule("geneExp", "hugo", LayoutAuto,
		[]string{"log2 lowess normalized (cy5/cy3) collapsed by gene symbol"}, "", targetsExclude)}
}

func hmiRNA() []Rule {
	return []Rule{matrixRule("miRNAExp", "agilentHumanMiRNA", LayoutAuto,
		[]string{"unc_DWD_Batch_adjusted"}, "", targetsExclude)}
}

func u133() []Rule {
	return []Rule{matrixRule("geneExp", "affyU133a", LayoutAuto,
		[]string{"Signal", "Value"}, "", `.*targets$|.*README.*.txt`)}
}

func humanHap() []Rule {
	return []Rule{segmentRule("cna", LayoutFirstColumnKey, []string{"mean"},
		`^.*seg.txt$|^.*segnormal.txt$`, targetsExclude)}
}

func rnaSeqV2() []Rule {
	return []Rule{
		matrixRule("geneExp", "hugo.unc", LayoutNamedField, []string{"normalized_count"},
			`^.*rsem.genes.normalized_results$|^.*sdrf.txt$`, ""),
		matrixRule("isoformExp", "ucsc.id", LayoutNamedField, []string{"raw_count"},
			`^.*rsem.isoforms.results$`, ""),
	}
}

func miRNASeq() []Rule {
	return []Rule{matrixRule("miRNAExp", "hsa.mirna", LayoutAuto,
		[]string{"reads_per_million_miRNA_mapped"},
		`^.*.mirna.quantification.txt$`,
		`^.*COAD.*hg19.mirna.quantification.txt$|`+
			`^.*OV.*hg19.mirna.quantification.txt$|`+
			`^.*READ.*hg19.mirna.quantification.txt$|`+
			`^.*LAML.*hg19.mirna.quantification.txt$`)}
}

func bio() []Rule {
	kinds := []string{"patient", "sample", "radiation", "drug", "portion", "analyte", "aliquot", "followup"}
	out := make([]Rule, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, clinicalRule(k))
	}
	return out
}

func buildRegistry() map[string]*PlatformSpec {
	specs := map[string][]Rule{
		"AgilentG4502A_07":   agilent(),
		"AgilentG4502A_07_1": agilent(),
		"AgilentG4502A_07_2": agilent(),
		"AgilentG4502A_07_3": agilent(),
		"CGH-1x1M_G4447A": {
			segmentRule("cna", LayoutFileKeyed, []string{"seg.mean"}, "", targetsExclude),
		},
		"Genome_Wide_SNP_6": {
			snp6Rule("cna", []string{"seg.mean", "Segment_Mean"}, "Segment_Mean", "Num_Probes",
				`^.*\.hg19.seg.txt$|^.*\.segmented.dat$`),
			snp6Rule("cna_nocnv", []string{"seg.mean", "Segment_Mean"}, "Segment_Mean", "Num_Probes",
				`^.*\.nocnv_hg19.seg.txt$|^.*\.segmented.dat$`),
			snp6Rule("cna_probecount", []string{"Num_Probes"}, "Num_Probes", "",
				`^.*\.hg19.seg.txt$|^.*\.segmented.dat$`),
			snp6Rule("cna_nocnv_probecount", []string{"Num_Probes"}, "Num_Probes", "",
				`^.*\.nocnv_hg19.seg.txt$|^.*\.segmented.dat$`),
		},
		"H-miRNA_8x15K":   hmiRNA(),
		"H-miRNA_8x15Kv2": hmiRNA(),
		"HG-CGH-244A": {
			segmentRule("cna", LayoutFileKeyed, []string{"Segment_Mean", "seg.mean"}, "", targetsExclude),
		},
		"HG-CGH-415K_G4124A": {
			segmentRule("cna", LayoutFileKeyed, []string{"Segment_Mean"}, "", targetsExclude),
		},
		"HT_HG-U133A":    u133(),
		"HG-U133_Plus_2": u133(),
		"HuEx-1_0-st-v2": {
			matrixRule("miRNAExp", "hugo", LayoutPreMerged, []string{"Signal"},
				`^.*gene.txt$|^.*sdrf.txt$`, `.*.adf.txt|^.*idf.txt|^.*sdrf.txt|targets$`),
		},
		"Human1MDuo":  humanHap(),
		"HumanHap550": humanHap(),
		"IlluminaHiSeq_DNASeqC": {
			segmentRule("cna", LayoutFileKeyed, []string{"Segment_Mean"}, "", targetsExclude),
		},
		"HumanMethylation27": {
			matrixRule("betaValue", "illuminaMethyl27K_gpl8490", LayoutAuto,
				[]string{"Beta_Value", "Beta_value"}, "", `.*.adf.txt|^.*idf.txt|^.*sdrf.txt|^.*targets$`),
		},
		"HumanMethylation450": {
			matrixRule("betaValue", "illuminaHumanMethylation450", LayoutKeyedTwoRow,
				[]string{"Beta_value", "Beta_Value"}, "", `.*.adf.txt|^.*idf.txt|^.*sdrf.txt|^.*targets$`),
		},
		"IlluminaHiSeq_RNASeq": {
			matrixRule("geneExp", "hugo.unc", LayoutAuto, []string{"RPKM"},
				`^.*gene.quantification.txt$`,
				`^.*bcgsc.ca_OV.IlluminaHiSeq_RNASeq.*hg19.gene.quantification.txt$|`+
					`^.*bcgsc.ca_STAD.IlluminaHiSeq_RNASeq.*[^v2].gene.quantification.txt`),
		},
		"IlluminaGA_RNASeq": {
			matrixRule("geneExp", "hugo.unc", LayoutAuto, []string{"RPKM"},
				`^.*\.gene.quantification.txt$|^.*sdrf.txt$`, ""),
		},
		"IlluminaGA_RNASeqV2":    rnaSeqV2(),
		"IlluminaHiSeq_RNASeqV2": rnaSeqV2(),
		"MDA_RPPA_Core": {
			matrixRule("RPPA", "md_anderson_antibodies", LayoutAuto,
				[]string{"Protein Expression", "Protein.Expression"}, "",
				`^.*.antibody_annotation.txt|^.*array_design*|^.*idf.txt|^.*sdrf.txt|^.*targets$`),
		},
		"IlluminaGA_miRNASeq":    miRNASeq(),
		"IlluminaHiSeq_miRNASeq": miRNASeq(),
		"bio":                    bio(),
		"IlluminaGA_DNASeq":      mafRules(),
		"SOLiD_DNASeq":           mafRules(),
		"ABI":                    mafRules(),
		"Mutation Calling":       mafRules(),
	}

	out := make(map[string]*PlatformSpec, len(specs))
	for name, rules := range specs {
		p := &PlatformSpec{Name: name, Rules: rules}
		if name == "MDA_RPPA_Core" {
			p.TargetSuffix = ".SD"
		}
		out[name] = p
	}
	return out
}

var registry = buildRegistry()

// Lookup returns the platform spec registered under name.
func Lookup(name string) (*PlatformSpec, error) {
	p, ok := registry[name]
	if !ok {
		return nil, errors.E(errors.Op("rules.Lookup"), errors.KindUnsupportedPlatform,
			fmt.Sprintf("platform %s not supported", name))
	}
	return p, nil
}

// Platforms returns every registered platform name, sorted.
func Platforms() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Outputs lists the output kinds a platform advertises. Clinical
// archives advertise "drugs" while their rule is keyed "drug"; callers
// restricting clinical types by this list get no drug table.
func Outputs(p *PlatformSpec) []string {
	if p.Shape() == Clinical {
		return []string{"patient", "aliquot", "analyte", "portion", "sample", "drugs", "radiation", "followup"}
	}
	return []string{"default"}
}
