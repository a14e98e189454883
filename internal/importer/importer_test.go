package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nishad/tcgaimport/internal/emit"
	"github.com/nishad/tcgaimport/internal/errors"
	"github.com/nishad/tcgaimport/internal/fetcher"
	"github.com/nishad/tcgaimport/internal/models"
	"github.com/nishad/tcgaimport/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	methBase = "jhu-usc.edu_BRCA.HumanMethylation450.Level_3"
	dataURL  = "https://tcga-data.nci.nih.gov/anonymous/brca/" + methBase + ".1.0.0.tar.gz"
	mageURL  = "https://tcga-data.nci.nih.gov/anonymous/brca/jhu-usc.edu_BRCA.HumanMethylation450.mage-tab.1.0.0.tar.gz"
)

type env struct {
	mirror *fetcher.Fetcher
	work   string
	out    string
}

func newEnv(t *testing.T) env {
	t.Helper()
	return env{
		mirror: fetcher.New(fetcher.Config{Mirror: t.TempDir()}),
		work:   t.TempDir(),
		out:    t.TempDir(),
	}
}

func (e env) archive(t *testing.T, url string, files ...testutil.File) {
	t.Helper()
	path, err := e.mirror.Path(url)
	require.NoError(t, err)
	testutil.WriteTarGz(t, path, files...)
}

func (e env) importer(cfg Config) *Importer {
	cfg.WorkDir = e.work
	cfg.OutDir = e.out
	cfg.NewRunID = func() string { return "0123456789abcdef" }
	return New(cfg, e.mirror, nil, zap.NewNop())
}

func methRequest(urls ...string) *models.ArchiveRequest {
	req := &models.ArchiveRequest{
		Platform:    "HumanMethylation450",
		Basename:    methBase,
		Version:     "2013-01-01",
		Annotations: map[string]any{"acronym": "BRCA"},
		Provenance:  models.Provenance{Name: "tcgaimport"},
	}
	for _, u := range urls {
		req.Provenance.Used = append(req.Provenance.Used, models.UsedURL{URL: u, ConcreteType: models.UsedURLType})
	}
	return req
}

func seedMethylation(t *testing.T, e env) {
	e.archive(t, dataURL,
		testutil.File{Name: methBase + ".1.0.0/MANIFEST.txt", Content: "abc  HYB1.txt\n"},
		testutil.File{Name: methBase + ".1.0.0/HYB1.lvl-3.txt", Content: testutil.Methylation450File("HYB1",
			"cg00000029\t0.2712\tRBL2\t16\t53468112",
			"cg00000108\t0.91\tC3orf35\t3\t37459206")},
		testutil.File{Name: methBase + ".1.0.0/CTRL.lvl-3.txt", Content: testutil.Methylation450File("TCGA-07-0249-20A",
			"cg00000029\t0.5\tRBL2\t16\t53468112")},
	)
	e.archive(t, mageURL,
		testutil.File{Name: "mage/jhu-usc.edu_BRCA.HumanMethylation450.1.sdrf.txt", Content: "Extract Name\tHybridization Name\n" +
			"TCGA-A1-A0SB-01A\tHYB1\n"},
		testutil.File{Name: "mage/jhu-usc.edu_BRCA.HumanMethylation450.1.idf.txt", Content: testutil.IDF},
	)
}

func TestRunMethylation(t *testing.T) {
	e := newEnv(t)
	seedMethylation(t, e)

	res, err := e.importer(Config{RemoveControls: true}).Run(context.Background(), methRequest(dataURL, mageURL))
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 1)
	assert.Empty(t, res.Workspace)

	a := res.Artifacts[0]
	assert.Equal(t, "betaValue", a.DataSubType)
	assert.Equal(t, filepath.Join(e.out, methBase+".betaValue.tsv"), a.DataPath)

	want := "probes\tTCGA-A1-A0SB-01A\n" +
		"cg00000029\t0.2712\n" +
		"cg00000108\t0.91\n"
	assert.Equal(t, want, testutil.ReadFile(t, a.DataPath))

	v, err := emit.Verify(a.MetaPath)
	require.NoError(t, err)
	assert.True(t, v.OK(), "recorded hash matches the data file")

	assert.Equal(t, "BRCA methylation", a.Metadata["title"])
	ann := a.Metadata["annotations"].(map[string]any)
	assert.Equal(t, "tcga.BRCA", ann["columnKeySrc"])

	entries, err := os.ReadDir(e.work)
	require.NoError(t, err)
	assert.Empty(t, entries, "workspace removed after success")
}

func TestRunKeepsControlsWhenAsked(t *testing.T) {
	e := newEnv(t)
	seedMethylation(t, e)

	res, err := e.importer(Config{}).Run(context.Background(), methRequest(dataURL, mageURL))
	require.NoError(t, err)
	header := strings.SplitN(testutil.ReadFile(t, res.Artifacts[0].DataPath), "\n", 2)[0]
	assert.Equal(t, "probes\tTCGA-07-0249-20A\tTCGA-A1-A0SB-01A", header)
}

func TestRunUUIDTranslation(t *testing.T) {
	e := newEnv(t)
	seedMethylation(t, e)

	cfg := Config{RemoveControls: true, UUIDs: map[string]string{"TCGA-A1-A0SB-01A": "TCGA-A1-A0SB-01A-11D"}}
	res, err := e.importer(cfg).Run(context.Background(), methRequest(dataURL, mageURL))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(testutil.ReadFile(t, res.Artifacts[0].DataPath), "probes\tTCGA-A1-A0SB-01A-11D\n"))
}

func TestRunMissingSource(t *testing.T) {
	e := newEnv(t)

	_, err := e.importer(Config{}).Run(context.Background(), methRequest(dataURL))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindMissingSource))

	entries, err := os.ReadDir(e.work)
	require.NoError(t, err)
	assert.Empty(t, entries, "no workspace before sources resolve")
}

func TestRunUnsupportedPlatform(t *testing.T) {
	e := newEnv(t)
	req := methRequest()
	req.Platform = "Nonexistent"

	_, err := e.importer(Config{}).Run(context.Background(), req)
	assert.True(t, errors.IsKind(err, errors.KindUnsupportedPlatform))
}

func TestRunClinical(t *testing.T) {
	e := newEnv(t)
	url := "https://tcga-data.nci.nih.gov/anonymous/brca/nationwidechildrens.org_BRCA.bio.Level_2.1.0.0.tar.gz"
	e.archive(t, url, testutil.File{
		Name:    "nationwidechildrens.org_BRCA.bio.Level_2.1.0.0/nationwidechildrens.org_biospecimen.TCGA-A1-A0SB.xml",
		Content: testutil.ClinicalXML,
	})

	req := &models.ArchiveRequest{
		Platform:    "bio",
		Basename:    "nationwidechildrens.org_BRCA.bio.Level_2",
		Annotations: map[string]any{"acronym": "BRCA"},
		Provenance:  models.Provenance{Used: []models.UsedURL{{URL: url}}},
	}
	res, err := e.importer(Config{Sanitize: true, ClinicalTypes: []string{"patient", "sample", "drugs"}}).
		Run(context.Background(), req)
	require.NoError(t, err)

	var names []string
	for _, a := range res.Artifacts {
		names = append(names, a.DataSubType)
	}
	assert.Equal(t, []string{"patient", "sample"}, names, "the drugs restriction builds no drug table")

	patient := testutil.ReadFile(t, res.Artifacts[0].DataPath)
	assert.NotContains(t, patient, "race")
	assert.Contains(t, patient, "Stage II")

	sample := res.Artifacts[1]
	assert.Equal(t, 1, sample.Warnings)
	assert.Contains(t, testutil.ReadFile(t, sample.ErrorPath), "bcr_sample_barcode")
}

func TestRunEmptyDataSubType(t *testing.T) {
	e := newEnv(t)
	e.archive(t, dataURL, testutil.File{Name: methBase + ".1.0.0/README.txt", Content: "nothing"})

	res, err := e.importer(Config{}).Run(context.Background(), methRequest(dataURL))
	require.NoError(t, err)
	assert.Empty(t, res.Artifacts)
	assert.Equal(t, []string{"betaValue"}, res.Empty)
}

func TestRunCorruptArchiveKeepsWorkspace(t *testing.T) {
	e := newEnv(t)
	path, err := e.mirror.Path(dataURL)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0644))

	res, err := e.importer(Config{}).Run(context.Background(), methRequest(dataURL))
	require.Error(t, err)
	require.NotNil(t, res)
	assert.DirExists(t, res.Workspace)
}

func platformRequest(platform, basename string, urls ...string) *models.ArchiveRequest {
	req := methRequest(urls...)
	req.Platform = platform
	req.Basename = basename
	return req
}

func TestRunAliasesMultiDotFileNames(t *testing.T) {
	e := newEnv(t)
	base := "unc.edu_BRCA.IlluminaHiSeq_RNASeq.Level_3"
	url := "https://tcga-data.nci.nih.gov/anonymous/brca/" + base + ".1.0.0.tar.gz"
	dataFile := "UNCID_1.TCGA-A1-A0SB-01A.gene.quantification.txt"
	e.archive(t, url,
		testutil.File{Name: base + ".1.0.0/" + dataFile, Content: "gene\traw_counts\tRPKM\n" +
			"A1BG|1\t12\t0.53\n"},
		testutil.File{Name: base + ".1.0.0/unc.edu_BRCA.IlluminaHiSeq_RNASeq.1.sdrf.txt", Content: "Extract Name\tDerived Data File\n" +
			"TCGA-A1-A0SB-01A\t" + dataFile + "\n"},
	)

	res, err := e.importer(Config{}).Run(context.Background(), platformRequest("IlluminaHiSeq_RNASeq", base, url))
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 1)
	assert.Equal(t, "probes\tTCGA-A1-A0SB-01A\nA1BG|1\t0.53\n", testutil.ReadFile(t, res.Artifacts[0].DataPath))
}

func TestRunAliasesRepeatedSDRFColumns(t *testing.T) {
	e := newEnv(t)
	base := "jhu-usc.edu_BRCA.HumanMethylation27.Level_3"
	url := "https://tcga-data.nci.nih.gov/anonymous/brca/" + base + ".1.0.0.tar.gz"
	e.archive(t, url,
		testutil.File{Name: base + ".1.0.0/L3FILE.txt", Content: "Composite Element REF\tBeta_Value\n" +
			"cg00000292\t0.71\n"},
		testutil.File{Name: base + ".1.0.0/jhu-usc.edu_BRCA.HumanMethylation27.1.sdrf.txt", Content: "Extract Name\tDerived Array Data File\tDerived Array Data File\n" +
			"TCGA-A1-A0SB-01A\tL2FILE.txt\tL3FILE.txt\n"},
	)

	res, err := e.importer(Config{}).Run(context.Background(), platformRequest("HumanMethylation27", base, url))
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 1)
	assert.Equal(t, "probes\tTCGA-A1-A0SB-01A\ncg00000292\t0.71\n", testutil.ReadFile(t, res.Artifacts[0].DataPath))
}
