package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eserial"
	"eserial/internal/demo"
	"eserial/schema"
)

func TestRun_Demo(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "eserial.yaml")
	cfg := "compressor: zlib\nstore:\n  kind: file\n  file:\n    dir: " + dir + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), []string{"demo", "-config", cfgPath, "-key", "Sample"}, out))
	assert.Equal(t, strings.Repeat("true\n", 6), out.String())

	// the saved frame is what dump reads
	out.Reset()
	require.NoError(t, run(context.Background(), []string{"dump", filepath.Join(dir, "Sample.out.bin")}, out))
	var doc map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Contains(t, doc, "objects")
}

func TestRun_DumpRaw(t *testing.T) {
	reg := schema.NewRegistry()
	demo.Register(reg, 1)
	root := demo.NewSample()
	root.Name = "raw"
	data, err := eserial.NewCodec(eserial.CodecWithRegistry(reg)).Marshal(context.Background(), root)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "raw.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), []string{"dump", path}, out))
	assert.Contains(t, out.String(), `"raw"`)
}

func TestRun_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"load"}},
		{name: "dump without file", args: []string{"dump"}},
		{name: "dump missing file", args: []string{"dump", filepath.Join(t.TempDir(), "none.bin")}},
		{name: "demo missing config", args: []string{"demo", "-config", filepath.Join(t.TempDir(), "none.yaml")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, run(context.Background(), tc.args, &bytes.Buffer{}))
		})
	}
}

func TestDemoChecks(t *testing.T) {
	orig := demo.NewSample()
	orig.Array = []*demo.Sample{orig}
	orig.Secret = "wumpus"
	in := demo.NewSample()
	in.Array = []*demo.Sample{in}
	for _, ok := range demoChecks(orig, in) {
		assert.True(t, ok)
	}
	in.Secret = "wumpus"
	assert.Contains(t, demoChecks(orig, in), false)
}
