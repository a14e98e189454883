package emit

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nishad/tcgaimport/internal/errors"
)

// Verification compares an artifact's recorded hash with its data file.
type Verification struct {
	DataPath string
	Recorded string
	Actual   string
}

// OK reports whether the hashes agree.
func (v Verification) OK() bool {
	return v.Recorded != "" && v.Recorded == v.Actual
}

// Verify recomputes the hash of the data file next to a metadata
// sidecar. A mismatch is reported through the result, not as an error.
func Verify(metaPath string) (*Verification, error) {
	const op errors.Op = "emit.Verify"

	if !strings.HasSuffix(metaPath, ".json") {
		return nil, errors.E(op, errors.KindConfig, fmt.Sprintf("%s is not a metadata sidecar", metaPath))
	}
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}

	var meta struct {
		Annotations struct {
			MD5 string `json:"md5"`
		} `json:"annotations"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.E(op, errors.KindParse, err, "failed to parse metadata")
	}

	v := &Verification{
		DataPath: strings.TrimSuffix(metaPath, ".json"),
		Recorded: meta.Annotations.MD5,
	}
	if v.Actual, err = Digest(v.DataPath); err != nil {
		return nil, errors.E(op, errors.KindIO, err)
	}
	return v, nil
}
