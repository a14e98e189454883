package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishad/tcgaimport/internal/catalog"
	"github.com/nishad/tcgaimport/internal/config"
	"github.com/nishad/tcgaimport/internal/emit"
	"github.com/nishad/tcgaimport/internal/fetcher"
	"github.com/nishad/tcgaimport/internal/models"
	"github.com/nishad/tcgaimport/internal/testutil"
)

const (
	methBase = "jhu-usc.edu_BRCA.HumanMethylation450.Level_3"
	dataURL  = "https://tcga-data.nci.nih.gov/anonymous/brca/" + methBase + ".1.0.0.tar.gz"
	mageURL  = "https://tcga-data.nci.nih.gov/anonymous/brca/jhu-usc.edu_BRCA.HumanMethylation450.mage-tab.1.0.0.tar.gz"
)

// resetFlags restores every flag to its default so commands can be
// executed repeatedly within one test binary.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	configPath = ""

	var out bytes.Buffer
	stdout = &out
	t.Cleanup(func() { stdout = os.Stdout })

	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

type testEnv struct {
	dir        string
	configFile string
	cfg        *config.Config
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.WorkDirectory = filepath.Join(dir, "work")
	cfg.OutputDirectory = filepath.Join(dir, "out")
	cfg.Mirror.Path = filepath.Join(dir, "mirror")
	cfg.Catalog.Path = filepath.Join(dir, "catalog.db")
	cfg.Build.RemoveControls = true

	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, cfg.Save(configFile))
	return testEnv{dir: dir, configFile: configFile, cfg: cfg}
}

func (e testEnv) seed(t *testing.T) string {
	t.Helper()
	mirror := fetcher.New(fetcher.Config{Mirror: e.cfg.Mirror.Path})
	for url, files := range map[string][]testutil.File{
		dataURL: {
			{Name: methBase + ".1.0.0/HYB1.lvl-3.txt", Content: testutil.Methylation450File("HYB1",
				"cg00000029\t0.2712\tRBL2\t16\t53468112")},
		},
		mageURL: {
			{Name: "mage/jhu-usc.edu_BRCA.HumanMethylation450.1.sdrf.txt", Content: "Extract Name\tHybridization Name\nTCGA-A1-A0SB-01A\tHYB1\n"},
			{Name: "mage/jhu-usc.edu_BRCA.HumanMethylation450.1.idf.txt", Content: testutil.IDF},
		},
	} {
		path, err := mirror.Path(url)
		require.NoError(t, err)
		testutil.WriteTarGz(t, path, files...)
	}

	req := models.ArchiveRequest{
		Platform:    "HumanMethylation450",
		Basename:    methBase,
		Version:     "2013-01-01",
		Annotations: map[string]any{"acronym": "BRCA"},
		Provenance: models.Provenance{Name: "tcgaimport", Used: []models.UsedURL{
			{URL: dataURL}, {URL: mageURL},
		}},
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	path := filepath.Join(e.dir, "request.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestPlatforms(t *testing.T) {
	out, err := execute(t, "platforms")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "PLATFORM"))
	assert.Contains(t, out, "HumanMethylation450")
	assert.Contains(t, out, "drugs")
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tcgaimport.yaml")

	_, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)

	out, err := execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.Contains(t, out, "remove_controls: false")

	out, err = execute(t, "--config", path, "config", "init")
	require.NoError(t, err, "existing config is kept without --force")
	assert.Contains(t, out, "--force")
}

func TestBuildAndVerify(t *testing.T) {
	e := newTestEnv(t)
	reqPath := e.seed(t)

	out, err := execute(t, "--config", e.configFile, "build", reqPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 artifacts")

	dataPath := filepath.Join(e.cfg.OutputDirectory, methBase+".betaValue.tsv")
	assert.Equal(t, "probes\tTCGA-A1-A0SB-01A\ncg00000029\t0.2712\n", testutil.ReadFile(t, dataPath))

	cat, err := catalog.Open(e.cfg.Catalog.Path)
	require.NoError(t, err)
	defer cat.Close()
	a, err := cat.Get(context.Background(), methBase+".betaValue.tsv")
	require.NoError(t, err)
	assert.Equal(t, "betaValue", a.DataSubType)

	_, err = execute(t, "--config", e.configFile, "verify", dataPath+".json")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(dataPath, []byte("tampered\n"), 0644))
	_, err = execute(t, "--config", e.configFile, "verify", dataPath+".json")
	assert.Error(t, err)
}

func TestBuildMissingRequest(t *testing.T) {
	e := newTestEnv(t)

	_, err := execute(t, "--config", e.configFile, "build", filepath.Join(e.dir, "nope.json"))
	assert.Error(t, err)
}

func TestBatchReportsFailures(t *testing.T) {
	e := newTestEnv(t)
	good := e.seed(t)

	bad := filepath.Join(e.dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"platform": "HumanMethylation450", "basename": "missing",
		"provenance": {"used": [{"url": "https://tcga-data.nci.nih.gov/anonymous/missing.tar.gz"}]}}`), 0644))

	out, err := execute(t, "--config", e.configFile, "batch", "--workers", "2", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 requests failed")
	assert.Contains(t, out, methBase)
}

func TestChecksum(t *testing.T) {
	e := newTestEnv(t)
	reqPath := e.seed(t)

	mirror := fetcher.New(fetcher.Config{Mirror: e.cfg.Mirror.Path})
	dataPath, err := mirror.Path(dataURL)
	require.NoError(t, err)
	sum, err := emit.Digest(dataPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dataPath+".md5", []byte(sum+"  "+filepath.Base(dataPath)+"\n"), 0644))

	out, err := execute(t, "--config", e.configFile, "checksum", reqPath)
	require.Error(t, err, "the mage-tab archive has no .md5 file")
	assert.Contains(t, out, "OK: "+dataPath)

	magePath, err := mirror.Path(mageURL)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(magePath+".md5", []byte("00000000000000000000000000000000\n"), 0644))

	_, err = execute(t, "--config", e.configFile, "checksum", "--delete", reqPath)
	require.Error(t, err)
	_, err = os.Stat(magePath)
	assert.True(t, os.IsNotExist(err), "corrupt archive deleted")
	_, err = os.Stat(dataPath)
	assert.NoError(t, err, "good archive kept")
}

func TestBuildReport(t *testing.T) {
	e := newTestEnv(t)
	reqPath := e.seed(t)

	out, err := execute(t, "--config", e.configFile, "build", "--report", reqPath)
	require.NoError(t, err)

	var got report
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "HumanMethylation450", got.Platform)
	require.Len(t, got.Sources, 2)
	assert.True(t, strings.HasPrefix(got.Sources[0], e.cfg.Mirror.Path))

	require.Len(t, got.Outputs, 1)
	assert.Equal(t, filepath.Join(e.cfg.OutputDirectory, methBase+".betaValue.tsv"), got.Outputs[0].Path)
	ann := got.Outputs[0].Metadata["annotations"].(map[string]any)
	assert.Equal(t, "genomicMatrix", ann["fileType"])
	assert.Equal(t, "BRCA", ann["acronym"])

	_, err = os.Stat(e.cfg.WorkDirectory)
	assert.True(t, os.IsNotExist(err), "report builds nothing")
}
