package models

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nishad/tcgaimport/internal/errors"
)

// UsedURLType is the provenance record type attached to every source archive
const UsedURLType = "org.sagebionetworks.repo.model.provenance.UsedURL"

// UsedURL names one source archive consumed by a run
type UsedURL struct {
	URL          string `json:"url"`
	ConcreteType string `json:"concreteType,omitempty"`
	Name         string `json:"name,omitempty"`
}

// Provenance describes the activity that produced an artifact
type Provenance struct {
	Name string    `json:"name"`
	Used []UsedURL `json:"used"`
}

// ArchiveRequest is everything a run needs to know about one archive
// basename. It is loaded once and not changed afterwards.
type ArchiveRequest struct {
	Platform    string         `json:"platform"`
	Basename    string         `json:"basename"`
	Version     string         `json:"version"`
	Annotations map[string]any `json:"annotations"`
	Provenance  Provenance     `json:"provenance"`
}

// LoadRequest reads an ArchiveRequest from a JSON file
func LoadRequest(path string) (*ArchiveRequest, error) {
	const op errors.Op = "models.LoadRequest"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.E(op, errors.KindIO, err, "failed to read request")
	}

	var req ArchiveRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.E(op, errors.KindParse, err, fmt.Sprintf("failed to parse %s", path))
	}
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(op, err)
	}
	return &req, nil
}

// Validate checks the fields a run cannot do without
func (r *ArchiveRequest) Validate() error {
	const op errors.Op = "models.Validate"
	if r.Basename == "" {
		return errors.E(op, errors.KindConfig, "request has no basename")
	}
	if r.Platform == "" {
		return errors.E(op, errors.KindConfig, "request has no platform")
	}
	return nil
}

// Acronym returns the disease cohort abbreviation, or "" when unset
func (r *ArchiveRequest) Acronym() string {
	if v, ok := r.Annotations["acronym"].(string); ok {
		return v
	}
	return ""
}

// Meta returns the request layer of the artifact metadata: annotations
// and provenance as plain JSON values. The result is a fresh copy.
func (r *ArchiveRequest) Meta() map[string]any {
	annotations := make(map[string]any, len(r.Annotations))
	for k, v := range r.Annotations {
		annotations[k] = copyValue(v)
	}

	used := make([]any, 0, len(r.Provenance.Used))
	for _, u := range r.Provenance.Used {
		rec := map[string]any{"url": u.URL}
		if u.ConcreteType != "" {
			rec["concreteType"] = u.ConcreteType
		}
		if u.Name != "" {
			rec["name"] = u.Name
		}
		used = append(used, rec)
	}

	return map[string]any{
		"annotations": annotations,
		"provenance": map[string]any{
			"name": r.Provenance.Name,
			"used": used,
		},
	}
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = copyValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = copyValue(inner)
		}
		return out
	default:
		return v
	}
}

// Artifact is one emitted output: data file plus its sidecars
type Artifact struct {
	RunID       string         `json:"run_id"`
	Basename    string         `json:"basename"`
	Platform    string         `json:"platform"`
	DataSubType string         `json:"data_sub_type"`
	Name        string         `json:"name"`
	DataPath    string         `json:"data_path"`
	MetaPath    string         `json:"meta_path"`
	ErrorPath   string         `json:"error_path,omitempty"`
	MD5         string         `json:"md5"`
	Warnings    int            `json:"warnings"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
