package rules

// ClinicalRecord locates one kind of clinical record in a BCR XML file.
type ClinicalRecord struct {
	Path     string   // pattern selecting each record element
	Barcode  string   // child element holding the record barcode
	Extra    []string // further field patterns, relative to the record
	Sequence bool     // copy the record's "sequence" attribute as a field
}

// VersionMarker is the attribute that marks an element as a data field.
const VersionMarker = "xsd_ver"

// DisplayNameAttr overrides the tag as the output field name.
const DisplayNameAttr = "preferred_name"

// ClinicalRecords is keyed by clinical dataSubType.
var ClinicalRecords = map[string]ClinicalRecord{
	"patient": {
		Path:    "tcga_bcr/patient",
		Barcode: "bcr_patient_barcode",
		Extra: []string{
			"patient/stage_event/*",
			"patient/stage_event/*/*",
			"patient/stage_event/tnm_categories/*/*",
		},
	},
	"sample": {
		Path:    "tcga_bcr/patient/samples/sample",
		Barcode: "bcr_sample_barcode",
	},
	"portion": {
		Path:    "tcga_bcr/patient/samples/sample/portions/portion",
		Barcode: "bcr_portion_barcode",
	},
	"analyte": {
		Path:    "tcga_bcr/patient/samples/sample/portions/portion/analytes/analyte",
		Barcode: "bcr_analyte_barcode",
	},
	"aliquot": {
		Path:    "tcga_bcr/patient/samples/sample/portions/portion/analytes/analyte/aliquots/aliquot",
		Barcode: "bcr_aliquot_barcode",
	},
	"drug": {
		Path:    "tcga_bcr/patient/drugs/drug",
		Barcode: "bcr_drug_barcode",
	},
	"radiation": {
		Path:    "tcga_bcr/patient/radiations/radiation",
		Barcode: "bcr_radiation_barcode",
	},
	"followup": {
		Path:     "tcga_bcr/patient/follow_ups/follow_up",
		Barcode:  "bcr_followup_barcode",
		Sequence: true,
	},
}
