package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `title = "aq"
when = 1979-05-27

[[servers]]
host = "a"
port = 80

[[servers]]
host = "b"
port = 81
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))
	return path
}

func TestRunTomlRoundTrips(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runToml(&TomlParams{Input: writeSample(t)}, &out))
	assert.Equal(t, sampleDoc, out.String())
}

func TestRunTomlFind(t *testing.T) {
	in := writeSample(t)

	var out bytes.Buffer
	require.NoError(t, runToml(&TomlParams{Input: in, Find: "servers.1.host"}, &out))
	assert.Equal(t, "\"b\"\n", out.String())

	out.Reset()
	require.NoError(t, runToml(&TomlParams{Input: in, Find: "servers.0"}, &out))
	assert.Equal(t, "host = \"a\"\nport = 80\n", out.String())

	err := runToml(&TomlParams{Input: in, Find: "a.b.0.c"}, &out)
	require.Error(t, err)
	assert.Equal(t, `key "a.b.0.c" not found`, err.Error())
}

func TestRunTomlFormats(t *testing.T) {
	in := writeSample(t)

	var out bytes.Buffer
	require.NoError(t, runToml(&TomlParams{Input: in, Format: "json"}, &out))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "1979-05-27", decoded["when"])
	assert.Len(t, decoded["servers"], 2)

	out.Reset()
	require.NoError(t, runToml(&TomlParams{Input: in, Format: "keys"}, &out))
	for _, want := range []string{"title", "string", "when", "datetime", "servers", "array"} {
		assert.Contains(t, out.String(), want)
	}

	out.Reset()
	require.NoError(t, runToml(&TomlParams{Input: in, Find: "servers.0.port", Format: "dump"}, &out))
	assert.Contains(t, out.String(), "value.Value")

	err := runToml(&TomlParams{Input: in, Format: "yaml"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "yaml"`)
}

func TestRunTomlOutputFile(t *testing.T) {
	in := writeSample(t)
	dst := filepath.Join(t.TempDir(), "sub", "out.toml")

	var out bytes.Buffer
	require.NoError(t, runToml(&TomlParams{Input: in, Output: dst, Find: "title"}, &out))
	assert.Zero(t, out.Len())
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "\"aq\"\n", string(data))
}

func TestRunTomlInputErrors(t *testing.T) {
	var out bytes.Buffer
	err := runToml(&TomlParams{}, &out)
	require.Error(t, err)
	assert.Equal(t, "no input file path", err.Error())

	err = runToml(&TomlParams{Input: filepath.Join(t.TempDir(), "nope.toml")}, &out)
	require.Error(t, err)
	assert.Equal(t, "input file not exist", err.Error())
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.True(t, strings.HasPrefix(out.String(), "Aq v"))
}
