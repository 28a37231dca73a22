package p4c_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmateuszssak/p4c"
	"github.com/kmateuszssak/p4c/internal/testutil"
)

func TestParseConfigEntryControls(t *testing.T) {
	cfg, err := p4c.ParseConfig([]byte("[convert]\ningress = \"pipe\"\nkeep-unreachable = true\n"), "inline.toml")
	require.NoError(t, err)
	assert.Equal(t, "pipe", cfg.Convert.Ingress)
	assert.Equal(t, "egress", cfg.Convert.Egress)

	data := bytes.Replace(testutil.ReadFixture(t, "programs", "basic.yaml"),
		[]byte("- name: ingress"), []byte("- name: pipe"), 1)
	res, err := p4c.ConvertBytes(data, "basic.yaml", p4c.WithConfig(cfg))
	require.NoError(t, err)

	out := res.Program.String()
	testutil.ContainsCode(t, out, "control pipe(inout headers hdr, inout metadata meta, inout standard_metadata_t standard_metadata) {")
	testutil.ContainsCode(t, out, "V1Switch(ParserImpl(), verifyChecksum(), pipe(), egress(), computeChecksum(), DeparserImpl()) main;")
	assert.Contains(t, out, "counter(32w4, CounterType.packets) unused_cnt;")
}

func TestConvertSettingsLiteral(t *testing.T) {
	cfg := p4c.DefaultConfig()
	cfg.Convert = p4c.ConvertSettings{Ingress: "ingress", Egress: "egress", RegisterWidth: 0}

	_, err := p4c.ConvertFile(t.Context(), testutil.FixturePath(t, "programs", "basic.yaml"), p4c.WithConfig(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join("cmd", "p4convert", "testdata", "p4convert.toml")
	cfg, err := p4c.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Convert.RegisterWidth)
	assert.Equal(t, path, cfg.Path)

	_, err = p4c.LoadConfig(filepath.Join("testdata", "missing.toml"))
	assert.Error(t, err)
}

func TestFindConfigDefaults(t *testing.T) {
	cfg, err := p4c.FindConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, p4c.DefaultConfig().Convert, cfg.Convert)
}
