package testutil

// Canned TCGA file contents shared by package tests.

// SDRF maps hybridizations and derived files to extract names. The
// second row is a control material and the last row is truncated.
const SDRF = "Extract Name\tMaterial Type\tHybridization Name\tDerived Array Data File\tComment [TCGA Barcode]\n" +
	"EXP1\tDNA\tHYB1\tHYB1.CEL.txt\tTCGA-A1-A0SB-01A\n" +
	"CTRL1\tgenomic_DNA\tHYBC\tHYBC.CEL.txt\tcontrol\n" +
	"EXP2\tDNA\tHYB2\tHYB2.CEL.txt\tTCGA-A1-A0SB-10A\n" +
	"EXP3\tDNA\n"

// IDF carries experiment level metadata.
const IDF = "MAGE-TAB Version\t1.1\n" +
	"Investigation Title\tBRCA methylation\n" +
	"Person Affiliation\tJohns Hopkins\n" +
	"Date of Experiment\t2012-01-01\n"

// ClinicalXML is a reduced BCR clinical record for one patient.
const ClinicalXML = `<?xml version="1.0" encoding="UTF-8"?>
<brca:tcga_bcr xmlns:brca="http://tcga.nci/bcr/xml/clinical/brca/2.5" xmlns:admin="http://tcga.nci/bcr/xml/administration/2.5" xmlns:shared="http://tcga.nci/bcr/xml/shared/2.5" schemaVersion="2.5">
  <admin:admin>
    <admin:bcr xsd_ver="1.17">Nationwide Children's Hospital</admin:bcr>
  </admin:admin>
  <brca:patient>
    <shared:bcr_patient_barcode xsd_ver="1.8" preferred_name="">TCGA-A1-A0SB</shared:bcr_patient_barcode>
    <shared:gender xsd_ver="1.8" preferred_name="gender">FEMALE</shared:gender>
    <shared:race xsd_ver="1.8" preferred_name="race">WHITE</shared:race>
    <shared:ethnicity xsd_ver="1.8" preferred_name="ethnicity">NOT HISPANIC OR LATINO</shared:ethnicity>
    <shared:tumor_tissue_site xsd_ver="2.5">Breast</shared:tumor_tissue_site>
    <shared:stage_event system="AJCC">
      <shared:pathologic_stage xsd_ver="2" preferred_name="stage">Stage II</shared:pathologic_stage>
      <shared:tnm_categories>
        <shared:pathologic_categories>
          <shared:pathologic_T xsd_ver="2.5" preferred_name="ajcc_tumor_pathologic_pt">T2</shared:pathologic_T>
        </shared:pathologic_categories>
      </shared:tnm_categories>
    </shared:stage_event>
    <brca:samples>
      <shared:sample>
        <shared:bcr_sample_barcode xsd_ver="2.5">TCGA-A1-A0SB-01A</shared:bcr_sample_barcode>
        <shared:sample_type xsd_ver="2.5" preferred_name="sample_type">Primary Tumor</shared:sample_type>
      </shared:sample>
      <shared:sample>
        <shared:sample_type xsd_ver="2.5" preferred_name="sample_type">Blood Derived Normal</shared:sample_type>
      </shared:sample>
    </brca:samples>
    <brca:drugs>
      <shared:drug>
        <shared:bcr_drug_barcode xsd_ver="2.5">TCGA-A1-A0SB-D1</shared:bcr_drug_barcode>
        <shared:drug_name xsd_ver="2.5" preferred_name="drug_name">Tamoxifen</shared:drug_name>
      </shared:drug>
    </brca:drugs>
    <brca:follow_ups>
      <shared:follow_up sequence="1" version="2.1">
        <shared:bcr_followup_barcode xsd_ver="2.5">TCGA-A1-A0SB-F1</shared:bcr_followup_barcode>
        <shared:vital_status xsd_ver="1.8" preferred_name="vital_status">Alive</shared:vital_status>
      </shared:follow_up>
    </brca:follow_ups>
  </brca:patient>
</brca:tcga_bcr>
`

// Methylation450File returns a keyed two-row level 3 file for key.
func Methylation450File(key string, rows ...string) string {
	out := "Hybridization REF\t" + key + "\t" + key + "\t" + key + "\t" + key + "\n" +
		"Composite Element REF\tBeta_value\tGene_Symbol\tChromosome\tGenomic_Coordinate\n"
	for _, r := range rows {
		out += r + "\n"
	}
	return out
}
