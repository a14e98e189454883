package xmltree

import (
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const clinicalDoc = `<?xml version="1.0" encoding="UTF-8"?>
<brca:tcga_bcr xmlns:brca="http://tcga.nci/bcr/xml/clinical/brca/2.5" xmlns:shared="http://tcga.nci/bcr/xml/shared/2.5" schemaVersion="2.5">
  <admin:admin xmlns:admin="http://tcga.nci/bcr/xml/administration/2.5">
    <admin:bcr>Nationwide Children's Hospital</admin:bcr>
  </admin:admin>
  <brca:patient>
    <shared:bcr_patient_barcode xsd_ver="1.8" preferred_name="">TCGA-A1-A0SB</shared:bcr_patient_barcode>
    <shared:gender xsd_ver="1.8" preferred_name="gender">FEMALE</shared:gender>
    <shared:stage_event>
      <shared:pathologic_stage xsd_ver="2" preferred_name="stage">Stage II</shared:pathologic_stage>
      <shared:tnm_categories>
        <shared:pathologic_categories>
          <shared:pathologic_T xsd_ver="2.5">T2</shared:pathologic_T>
        </shared:pathologic_categories>
      </shared:tnm_categories>
    </shared:stage_event>
    <shared:samples>
      <shared:sample><shared:bcr_sample_barcode xsd_ver="1">TCGA-A1-A0SB-01A</shared:bcr_sample_barcode></shared:sample>
      <shared:sample><shared:bcr_sample_barcode xsd_ver="1">TCGA-A1-A0SB-10A</shared:bcr_sample_barcode></shared:sample>
    </shared:samples>
  </brca:patient>
</brca:tcga_bcr>`

func parseDoc(t *testing.T) *Node {
	t.Helper()
	root, err := Parse(strings.NewReader(clinicalDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return root
}

func TestParseStripsNamespaces(t *testing.T) {
	root := parseDoc(t)

	if root.Name != "tcga_bcr" {
		t.Errorf("expected root tcga_bcr, got %q", root.Name)
	}
	if diff := cmp.Diff(map[string]string{"schemaVersion": "2.5"}, root.Attrs); diff != "" {
		t.Errorf("root attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	for _, doc := range []string{"", "just text", "<a><b></a>"} {
		if _, err := Parse(strings.NewReader(doc)); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
}

func TestQueryPaths(t *testing.T) {
	root := parseDoc(t)

	tests := []struct {
		pattern string
		want    []string
	}{
		{"tcga_bcr/admin/*", []string{"tcga_bcr/admin/bcr"}},
		{"tcga_bcr/patient/stage_event/*", []string{
			"tcga_bcr/patient/stage_event/pathologic_stage",
			"tcga_bcr/patient/stage_event/tnm_categories",
		}},
		{"tcga_bcr/patient/stage_event/tnm_categories/*/*", []string{
			"tcga_bcr/patient/stage_event/tnm_categories/pathologic_categories/pathologic_T",
		}},
		{"tcga_bcr/patient/samples/sample", []string{
			"tcga_bcr/patient/samples/sample",
			"tcga_bcr/patient/samples/sample",
		}},
		{"patient/*", nil},
		{"tcga_bcr/missing/*", nil},
		{"tcga_bcr", []string{"tcga_bcr"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			var got []string
			for m := range Query(root, tt.pattern) {
				got = append(got, strings.Join(m.Path, "/"))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Query(%q) mismatch (-want +got):\n%s", tt.pattern, diff)
			}
		})
	}
}

// elementPaths lists the path of every element in the tree.
func elementPaths(n *Node, prefix []string, out *[]string) {
	path := append(prefix[:len(prefix):len(prefix)], n.Name)
	*out = append(*out, strings.Join(path, "/"))
	for _, c := range n.Children {
		if c.Kind == ElementNode {
			elementPaths(c, path, out)
		}
	}
}

func matchesPattern(path string, segments []string) bool {
	parts := strings.Split(path, "/")
	if len(parts) != len(segments) || parts[0] != segments[0] {
		return false
	}
	for i := 1; i < len(parts); i++ {
		if segments[i] != "*" && segments[i] != parts[i] {
			return false
		}
	}
	return true
}

func TestQueryAgreesWithAncestorChain(t *testing.T) {
	root := parseDoc(t)
	var all []string
	elementPaths(root, nil, &all)

	patterns := []string{
		"tcga_bcr/*", "tcga_bcr/*/*", "tcga_bcr/*/*/*", "tcga_bcr/patient/*/*",
		"tcga_bcr/*/samples/*/bcr_sample_barcode", "tcga_bcr/*/stage_event/*/*/*",
	}
	for _, pattern := range patterns {
		segments := strings.Split(pattern, "/")
		var want []string
		for _, p := range all {
			if matchesPattern(p, segments) {
				want = append(want, p)
			}
		}
		var got []string
		for m := range Query(root, pattern) {
			got = append(got, strings.Join(m.Path, "/"))
		}
		slices.Sort(want)
		slices.Sort(got)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Query(%q) disagrees with brute force (-want +got):\n%s", pattern, diff)
		}
	}
}

func TestQueryMatchContents(t *testing.T) {
	root := parseDoc(t)

	var stage Match
	for m := range Query(root, "tcga_bcr/patient/stage_event/*") {
		if m.Name() == "pathologic_stage" {
			stage = m
		}
	}
	if stage.Text != "Stage II" {
		t.Errorf("expected text 'Stage II', got %q", stage.Text)
	}
	if stage.Attrs["preferred_name"] != "stage" || stage.Attrs["xsd_ver"] != "2" {
		t.Errorf("unexpected attrs %v", stage.Attrs)
	}

	// Only direct text counts; nested element text is not folded in.
	for m := range Query(root, "tcga_bcr/patient/stage_event") {
		if strings.TrimSpace(m.Text) != "" {
			t.Errorf("expected whitespace-only text for container, got %q", m.Text)
		}
	}
}

func TestQueryStopsEarly(t *testing.T) {
	root := parseDoc(t)

	count := 0
	for range Query(root, "tcga_bcr/patient/*") {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("expected iteration to stop at 2, got %d", count)
	}
}

func TestQueryTextNode(t *testing.T) {
	n := &Node{Kind: TextNode, Data: "hello"}
	var got []Match
	for m := range Query(n, "") {
		got = append(got, m)
	}
	if len(got) != 0 {
		t.Fatalf("a text node has no name, expected no match, got %d", len(got))
	}

	m := Match{Node: n, Text: n.Text()}
	if m.Attrs != nil || m.Text != "hello" {
		t.Errorf("unexpected text match %+v", m)
	}
}

func TestLastText(t *testing.T) {
	root := parseDoc(t)

	barcode, ok := LastText(root, "tcga_bcr/patient/bcr_patient_barcode")
	if !ok || barcode != "TCGA-A1-A0SB" {
		t.Errorf("expected patient barcode, got %q (%v)", barcode, ok)
	}

	last, ok := LastText(root, "tcga_bcr/patient/samples/sample/bcr_sample_barcode")
	if !ok || last != "TCGA-A1-A0SB-10A" {
		t.Errorf("expected last sample barcode, got %q", last)
	}

	if _, ok := LastText(root, "tcga_bcr/patient/nothing"); ok {
		t.Error("expected no match")
	}
}
