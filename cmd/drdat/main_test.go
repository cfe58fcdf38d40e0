package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cfg := filepath.Join(t.TempDir(), "missing.yaml")
	argv := append([]string{"drdat", "--config", cfg, "--log-format", "text"}, args...)
	err := newApp(&stdout, &stderr).Run(context.Background(), argv)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lat.json"), `[-90, 0, 89.75]`)
	writeFile(t, filepath.Join(dir, "grid.json"), `[[32, 40, 50], [60, null, 71]]`)
	writeFile(t, filepath.Join(dir, "vars.yaml"), `
variables:
  - name: latitude
    data: lat.json
    bits: 16
    scale: 360
    offset: 90
  - name: sst
    data: grid.json
    bits: 8
    scale: 5
    offset: -30
`)
	return dir
}

func TestEncodeInspectDecode(t *testing.T) {
	dir := writeFixture(t)
	blob := filepath.Join(dir, "out", "test.drdat")

	_, stderr, err := runApp(t, "encode", "--manifest", filepath.Join(dir, "vars.yaml"), "--out", blob)
	require.NoError(t, err)
	require.Contains(t, stderr, "wrote file")

	stdout, _, err := runApp(t, "inspect", "--in", blob)
	require.NoError(t, err)
	require.Contains(t, stdout, "2 variables")
	require.Contains(t, stdout, "2x3")

	stdout, _, err = runApp(t, "inspect", "--in", blob, "--json")
	require.NoError(t, err)
	var rep inspectReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	require.Len(t, rep.Variables, 2)
	require.Equal(t, int32(360000), rep.Variables[0].ScaleCode)
	require.Equal(t, 6, rep.Variables[1].Samples)

	jsonPath := filepath.Join(dir, "out.json")
	_, _, err = runApp(t, "decode", "--in", blob, "--out", jsonPath)
	require.NoError(t, err)

	raw, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var doc struct {
		Variables []struct {
			Shape  []int `json:"shape"`
			Values any   `json:"values"`
		} `json:"variables"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.Variables, 2)
	require.Equal(t, []int{3}, doc.Variables[0].Shape)
	require.Equal(t, []int{2, 3}, doc.Variables[1].Shape)

	// Baseline decode keeps the NaN sentinel finite: 255/5 + 30.
	rows := doc.Variables[1].Values.([]any)
	require.Equal(t, 81.0, rows[1].([]any)[1])

	stdout, _, err = runApp(t, "decode", "--in", blob, "--strict-nan")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	rows = doc.Variables[1].Values.([]any)
	require.Nil(t, rows[1].([]any)[1])
}

func TestEncodeRejectsBadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.json"), `[1, 2]`)
	writeFile(t, filepath.Join(dir, "vars.yaml"), "variables:\n  - name: x\n    data: x.json\n")
	out := filepath.Join(dir, "x.drdat")

	_, _, err := runApp(t, "encode", "--manifest", filepath.Join(dir, "vars.yaml"), "--out", out, "--scale", "0")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid parameter")
	require.NoFileExists(t, out)

	_, _, err = runApp(t, "encode", "--manifest", filepath.Join(dir, "vars.yaml"), "--out", out, "--bits", "8", "--scale", "10")
	require.NoError(t, err)
	require.FileExists(t, out)
}

func TestDecodeBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.drdat")
	writeFile(t, path, "\x46\x00")

	_, _, err := runApp(t, "decode", "--in", path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad magic")
}

func TestSelftestCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "test.drdat")
	stdout, _, err := runApp(t, "selftest", "--seed", "3", "--out", out)
	require.NoError(t, err)
	require.Contains(t, stdout, "latitude")
	require.Contains(t, stdout, "[5 7 4 8]")
	require.FileExists(t, out)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := runApp(t, "version")
	require.NoError(t, err)
	require.Contains(t, stdout, "version:")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Config{}, cfg)
	require.Equal(t, 16, cfg.Defaults().BitsPerSample)

	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "log_level: debug\ndefault_bits: 8\ndefault_scale: 2.5\nstrict_nan: true\n")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.True(t, *cfg.StrictNaN)
	d := cfg.Defaults()
	require.Equal(t, 8, d.BitsPerSample)
	require.Equal(t, 2.5, d.Scale)
	require.Equal(t, 0.0, d.Offset)

	writeFile(t, path, "default_bits: [\n")
	_, err = LoadConfig(path)
	require.Error(t, err)
}

func TestConfigStrictNaNDefault(t *testing.T) {
	dir := writeFixture(t)
	blob := filepath.Join(dir, "test.drdat")
	_, _, err := runApp(t, "encode", "--manifest", filepath.Join(dir, "vars.yaml"), "--out", blob)
	require.NoError(t, err)

	cfg := filepath.Join(dir, "config.yaml")
	writeFile(t, cfg, "strict_nan: true\nlog_format: json\n")

	var stdout, stderr bytes.Buffer
	err = newApp(&stdout, &stderr).Run(context.Background(), []string{"drdat", "--config", cfg, "decode", "--in", blob})
	require.NoError(t, err)
	require.Contains(t, stdout.String(), "null")
}
