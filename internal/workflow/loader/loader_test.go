package loader

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWorkflow = `{"nodes":[{"id":1,"type":"KSampler","pos":[0,0],"size":[200,300]}],"links":[]}`

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600), "writing fixture")
	return path
}

func pngChunk(kind string, payload []byte) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(payload)))
	buf.WriteString(kind)
	buf.Write(payload)
	crc := crc32.NewIEEE()
	crc.Write([]byte(kind))
	crc.Write(payload)
	_ = binary.Write(&buf, binary.BigEndian, crc.Sum32())
	return buf.Bytes()
}

func buildPNG(chunks ...[]byte) []byte {
	var buf bytes.Buffer
	buf.Write(pngSignature)
	// Minimal IHDR so the stream resembles a real file.
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], 1)
	binary.BigEndian.PutUint32(ihdr[4:], 1)
	ihdr[8] = 8
	buf.Write(pngChunk("IHDR", ihdr))
	for _, c := range chunks {
		buf.Write(c)
	}
	buf.Write(pngChunk("IEND", nil))
	return buf.Bytes()
}

func textChunkPayload(key, text string) []byte {
	return append(append([]byte(key), 0), []byte(text)...)
}

func TestReadBareJSON(t *testing.T) {
	path := writeTemp(t, "flow.json", []byte(sampleWorkflow))

	res := Read(path)
	require.NoError(t, res.Err, "bare JSON should load")
	require.Len(t, res.Document.Nodes, 1, "document should carry the node")
	assert.Equal(t, "KSampler", res.Document.Nodes[0].Type, "node type should decode")
	assert.Equal(t, path, res.SourcePath, "source path should round-trip")
}

func TestReadEnvelopeJSON(t *testing.T) {
	path := writeTemp(t, "flow.json", []byte(`{"version":1,"workflow":`+sampleWorkflow+`}`))

	res := Read(path)
	require.NoError(t, res.Err, "envelope JSON should load")
	assert.Len(t, res.Document.Nodes, 1, "embedded workflow should decode")
}

func TestReadEnvelopeWithStringPayload(t *testing.T) {
	quoted, err := json.Marshal(sampleWorkflow)
	require.NoError(t, err, "quoting fixture")
	path := writeTemp(t, "flow.json", append(append([]byte(`{"workflow":`), quoted...), '}'))

	res := Read(path)
	require.NoError(t, res.Err, "string-encoded workflow should load")
	assert.Len(t, res.Document.Nodes, 1, "double-encoded workflow should decode")
}

func TestReadPNGTextChunk(t *testing.T) {
	png := buildPNG(pngChunk("tEXt", textChunkPayload("workflow", sampleWorkflow)))
	path := writeTemp(t, "image.png", png)

	res := Read(path)
	require.NoError(t, res.Err, "tEXt workflow should load")
	assert.Len(t, res.Document.Nodes, 1, "chunk payload should decode")
}

func TestReadPNGCompressedITXT(t *testing.T) {
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	_, err := zw.Write([]byte(sampleWorkflow))
	require.NoError(t, err, "compressing fixture")
	require.NoError(t, zw.Close(), "closing compressor")

	// keyword NUL compressionFlag compressionMethod languageTag NUL
	// translatedKeyword NUL text
	payload := append([]byte("workflow"), 0, 1, 0, 0, 0)
	payload = append(payload, compressed.Bytes()...)
	path := writeTemp(t, "image.png", buildPNG(pngChunk("iTXt", payload)))

	res := Read(path)
	require.NoError(t, res.Err, "compressed iTXt workflow should load")
	assert.Len(t, res.Document.Nodes, 1, "inflated payload should decode")
}

func TestReadPNGMissingWorkflow(t *testing.T) {
	png := buildPNG(pngChunk("tEXt", textChunkPayload("prompt", `{"1":{}}`)))
	path := writeTemp(t, "image.png", png)

	res := Read(path)
	require.Error(t, res.Err, "PNG without a workflow chunk should fail")
	assert.Equal(t, "PNG metadata missing workflow field", res.Err.Error(),
		"error text should name the missing field")
	assert.Nil(t, res.Document, "no document should be produced")
}

func TestReadNotAPNG(t *testing.T) {
	path := writeTemp(t, "image.png", []byte("definitely not a png"))

	res := Read(path)
	assert.Error(t, res.Err, "bad signature should fail")
}

func TestReadUnsupportedExtension(t *testing.T) {
	path := writeTemp(t, "flow.txt", []byte(sampleWorkflow))

	res := Read(path)
	assert.Error(t, res.Err, "unknown extension should fail")
}

func TestReadMissingFile(t *testing.T) {
	res := Read(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, res.Err, "missing file should fail")
}

func TestReadInvalidJSON(t *testing.T) {
	path := writeTemp(t, "flow.json", []byte(`{"nodes": [`))

	res := Read(path)
	assert.Error(t, res.Err, "truncated JSON should fail")
}
