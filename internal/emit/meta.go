package emit

import (
	"fmt"

	"github.com/nishad/tcgaimport/internal/models"
	"github.com/nishad/tcgaimport/internal/rules"
)

// Defaults returns the shape specific base layer of an artifact's
// metadata.
func Defaults(rule *rules.Rule, req *models.ArchiveRequest) map[string]any {
	dst := rule.DataSubType
	cohort := "tcga." + req.Acronym()
	annotations := map[string]any{
		"lastModified": req.Version,
		"dataSubType":  dst,
	}

	var name string
	switch rule.Shape {
	case rules.Matrix:
		name = fmt.Sprintf("%s.%s.tsv", req.Basename, dst)
		annotations["fileType"] = "genomicMatrix"
		annotations["dataProducer"] = "TCGA"
		annotations["rowKeySrc"] = rule.ProbeMap
		annotations["columnKeySrc"] = cohort
	case rules.Segment:
		base := req.Basename
		if rule.Assembly != "" {
			base += "." + rule.Assembly
			annotations["assembly"] = map[string]any{"@id": rule.Assembly}
		}
		name = fmt.Sprintf("%s.%s.seg", base, dst)
		annotations["fileType"] = "seg"
		annotations["dataProducer"] = "TCGA"
		annotations["rowKeySrc"] = cohort
	case rules.Clinical:
		name = fmt.Sprintf("%s.%s.tsv", req.Basename, dst)
		annotations["fileType"] = "clinicalMatrix"
		annotations["rowKeySrc"] = cohort
	case rules.PassThrough:
		name = fmt.Sprintf("%s.%s", req.Basename, dst)
		annotations["fileType"] = "maf"
		annotations["dataSubType"] = "mutation"
	}

	return map[string]any{
		"name":        name,
		"annotations": annotations,
	}
}
