package samplekey

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/nishad/tcgaimport/internal/stage"
	"github.com/nishad/tcgaimport/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func resolveSDRF(t *testing.T, sdrf string) Map {
	t.Helper()
	dir := t.TempDir()
	ch := stage.NewChannel(dir)
	r := NewResolver(ch, zap.NewNop())

	require.NoError(t, r.SDRF(strings.NewReader(sdrf)))
	require.NoError(t, ch.Close())

	targets, err := LoadTargets(ch.Path(TargetsPort), "")
	require.NoError(t, err)
	return targets
}

func TestSDRFAliasing(t *testing.T) {
	sdrf := "Extract Name\tHybridization Name\tDerived Array Data File\n" +
		"EXP1\tHYB1\tHYB1.CEL.txt\n"

	targets := resolveSDRF(t, sdrf)

	for _, alias := range []string{"HYB1.CEL.txt", "HYB1.CEL", "HYB1", "EXP1"} {
		assert.Equal(t, "EXP1", targets[alias], alias)
	}
	assert.Len(t, targets, 4)
}

func TestSDRFSkipsControlsAndShortRows(t *testing.T) {
	targets := resolveSDRF(t, testutil.SDRF)

	assert.Equal(t, "EXP1", targets["HYB1"])
	assert.Equal(t, "EXP2", targets["HYB2.CEL"])
	assert.NotContains(t, targets, "HYBC", "control material rows contribute nothing")
	assert.NotContains(t, targets, "CTRL1")
	assert.NotContains(t, targets, "EXP3", "truncated rows are skipped")
}

func TestSDRFAllAliasColumns(t *testing.T) {
	sdrf := "Sample Name\tExtract Name\tDerived Data File\tDerived Array Data Matrix File\tHybridization Name\n" +
		"SMP\tEXT\tlevel3.data.txt\tmatrix.txt\t\n"

	targets := resolveSDRF(t, sdrf)

	want := Map{
		"SMP":             "EXT",
		"EXT":             "EXT",
		"level3":          "EXT",
		"level3.data":     "EXT",
		"level3.data.txt": "EXT",
		"matrix.txt":      "EXT",
	}
	assert.Equal(t, want, targets, "empty hybridization name is not an alias")
}

func TestSDRFMultiDotFileNames(t *testing.T) {
	sdrf := "Extract Name\tDerived Data File\n" +
		"TCGA-A1-A0SB-01A\tUNCID_1.TCGA-A1-A0SB-01A.gene.quantification.txt\n"

	targets := resolveSDRF(t, sdrf)

	for _, alias := range []string{
		"UNCID_1.TCGA-A1-A0SB-01A.gene.quantification.txt",
		"UNCID_1.TCGA-A1-A0SB-01A.gene.quantification",
		"UNCID_1",
	} {
		assert.Equal(t, "TCGA-A1-A0SB-01A", targets[alias], alias)
	}
}

func TestSDRFRepeatedFileColumns(t *testing.T) {
	sdrf := "Extract Name\tDerived Array Data File\tDerived Array Data File\n" +
		"TCGA-A1-A0SB-01A\tL2FILE.txt\tL3FILE.txt\n" +
		"TCGA-A1-A0SB-10A\tL2OTHER.txt\n"

	targets := resolveSDRF(t, sdrf)

	assert.Equal(t, "TCGA-A1-A0SB-01A", targets["L3FILE"], "every data level gets an alias")
	assert.Equal(t, "TCGA-A1-A0SB-01A", targets["L2FILE"])
	assert.NotContains(t, targets, "TCGA-A1-A0SB-10A", "rows missing the last repeat are short")
}

func TestSDRFLastWriterWins(t *testing.T) {
	sdrf := "Extract Name\tHybridization Name\n" +
		"EXP1\tSHARED\n" +
		"EXP2\tSHARED\n"

	targets := resolveSDRF(t, sdrf)
	assert.Equal(t, "EXP2", targets["SHARED"])
}

func TestSDRFWithoutExtractName(t *testing.T) {
	r := NewResolver(stage.NewChannel(t.TempDir()), nil)
	assert.Error(t, r.SDRF(strings.NewReader("Sample Name\nS1\n")))
	assert.NoError(t, r.SDRF(strings.NewReader("")))
}

func TestDescriptorMetadata(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir,
		testutil.File{Name: "a.idf.txt", Content: testutil.IDF},
		testutil.File{Name: "DESCRIPTION.txt", Content: "Level 3 methylation\n"},
		testutil.File{Name: "a.sdrf.txt", Content: testutil.SDRF},
	)

	ch := stage.NewChannel(t.TempDir())
	r := NewResolver(ch, zap.NewNop())
	for _, name := range []string{"a.idf.txt", "DESCRIPTION.txt", "a.sdrf.txt", "other.txt"} {
		require.NoError(t, r.Descriptor(filepath.Join(dir, name)), name)
	}

	meta := r.Meta()
	assert.Equal(t, "BRCA methylation", meta["title"])
	assert.Equal(t, "Johns Hopkins", meta["dataProducer"])
	assert.Equal(t, "2012-01-01", meta["experimentalDate"])
	assert.Equal(t, "Level 3 methylation\n", meta["description"])
	assert.NotContains(t, meta, "experimentalDescription")

	assert.Error(t, r.Descriptor(filepath.Join(dir, "missing.sdrf.txt")))
}

func TestLoadTargetsSuffix(t *testing.T) {
	ch := stage.NewChannel(t.TempDir())
	require.NoError(t, ch.Emit("HYB1", "TCGA-A1-A0SB-01A.SD", TargetsPort))
	require.NoError(t, ch.Close())

	targets, err := LoadTargets(ch.Path(TargetsPort), ".SD")
	require.NoError(t, err)
	assert.Equal(t, "TCGA-A1-A0SB-01A", targets["HYB1"])

	empty, err := LoadTargets(filepath.Join(t.TempDir(), "none"), "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTranslate(t *testing.T) {
	uuidPath := testutil.TempFile(t, "uuid.tsv",
		"0f3e-uuid\tTCGA-A1-A0SB-01A\nshort\nEXP2\tTCGA-A1-A0SB-10A\textra\n")
	uuids, err := LoadUUIDTable(uuidPath)
	require.NoError(t, err)
	assert.Len(t, uuids, 2)

	tr := NewTranslator(Map{"HYB1": "0f3e-uuid", "EXP2": "EXP2"}, uuids)

	tests := []struct {
		raw  string
		want string
	}{
		{"HYB1", "TCGA-A1-A0SB-01A"},
		{"0f3e-uuid", "TCGA-A1-A0SB-01A"},
		{"EXP2", "TCGA-A1-A0SB-10A"},
		{"unmapped", "unmapped"},
		{"", ""},
	}
	for _, tt := range tests {
		first := tr.Translate(tt.raw)
		assert.Equal(t, tt.want, first, tt.raw)
		assert.Equal(t, first, tr.Translate(tt.raw), "translation is deterministic")
		assert.Equal(t, first, tr.Translate(first), "translated keys are fixed points")
	}

	bare := NewTranslator(nil, nil)
	assert.Equal(t, "x", bare.Translate("x"))

	_, err = LoadUUIDTable(filepath.Join(t.TempDir(), "none.tsv"))
	assert.Error(t, err)
}
