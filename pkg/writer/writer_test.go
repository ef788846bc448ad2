package writer

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testData struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestJSONWriter_Write(t *testing.T) {
	data := testData{Name: "report", Value: 42}

	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter[testData]().Write(data, &buf))
	assert.Equal(t, `{"name":"report","value":42}`+"\n", buf.String())

	buf.Reset()
	require.NoError(t, NewPrettyJSONWriter[testData]().Write(data, &buf))
	assert.Contains(t, buf.String(), "\n  \"name\"")
}

func TestJSONWriter_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, NewJSONWriter[testData]().WriteToFile(testData{Name: "x"}, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded testData
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "x", decoded.Name)
}

func TestGzipWriter_RoundTrip(t *testing.T) {
	data := testData{Name: "compressed", Value: 7}

	var buf bytes.Buffer
	require.NoError(t, NewGzipWriter[testData]().Write(data, &buf))

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	defer gz.Close()

	var decoded testData
	require.NoError(t, json.NewDecoder(gz).Decode(&decoded))
	assert.Equal(t, data, decoded)
}

func TestWriteFileAuto(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "report.json")
	require.NoError(t, WriteFileAuto(testData{Name: "plain"}, plain))
	raw, err := os.ReadFile(plain)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"plain"`)

	packed := filepath.Join(dir, "report.json.gz")
	require.NoError(t, WriteFileAuto(testData{Name: "packed"}, packed))
	f, err := os.Open(packed)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	var decoded testData
	require.NoError(t, json.NewDecoder(gz).Decode(&decoded))
	assert.Equal(t, "packed", decoded.Name)
}
