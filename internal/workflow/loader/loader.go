// Package loader reads workflow documents from disk. It understands plain
// JSON files, JSON envelopes that embed the workflow under a named field,
// and PNG images carrying the workflow in a tEXt or iTXt metadata chunk.
package loader

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zjrosen/flowlens/internal/log"
	"github.com/zjrosen/flowlens/internal/workflow"
)

// ErrMissingWorkflowChunk is returned for PNG files that carry no workflow
// metadata.
var ErrMissingWorkflowChunk = errors.New("PNG metadata missing workflow field")

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// metadataKey names the text chunk (and JSON envelope field) holding the
// embedded graph.
const metadataKey = "workflow"

// Result is the outcome of a read attempt. Exactly one of Document and Err
// is set.
type Result struct {
	SourcePath string
	Document   *workflow.Document
	Err        error
}

// Read loads the workflow document at path. It never panics; every failure
// comes back in Result.Err so callers can surface it as a status message.
func Read(path string) Result {
	res := Result{SourcePath: path}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the user opening a file
	if err != nil {
		res.Err = fmt.Errorf("reading %s: %w", filepath.Base(path), err)
		return res
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		res.Document, res.Err = decodeJSON(data)
	case ".png":
		res.Document, res.Err = decodePNG(data)
	default:
		res.Err = fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}

	if res.Err != nil {
		log.Warn(log.CatLoader, "load failed", "path", path, "error", res.Err)
	} else {
		log.Info(log.CatLoader, "loaded document", "path", path, "nodes", len(res.Document.Nodes))
	}
	return res
}

// decodeJSON handles both a bare workflow object and an envelope object
// whose "workflow" field holds the graph, either inline or as a JSON string.
func decodeJSON(data []byte) (*workflow.Document, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if inner, ok := envelope[metadataKey]; ok {
		return decodePayload(inner)
	}
	return workflow.Decode(data)
}

// decodePayload parses a workflow value that may itself be a JSON-encoded
// string (double encoding is common in exported metadata).
func decodePayload(raw []byte) (*workflow.Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("unwrapping workflow string: %w", err)
		}
		return workflow.Decode([]byte(s))
	}
	return workflow.Decode(trimmed)
}

// decodePNG walks the PNG chunk stream looking for a tEXt or iTXt chunk
// keyed "workflow". Image data is never decoded.
func decodePNG(data []byte) (*workflow.Document, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, errors.New("not a PNG file")
	}

	r := bytes.NewReader(data[len(pngSignature):])
	for {
		var length uint32
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrMissingWorkflowChunk
			}
			return nil, fmt.Errorf("reading PNG chunk header: %w", err)
		}
		var chunkType [4]byte
		if _, err := io.ReadFull(r, chunkType[:]); err != nil {
			return nil, fmt.Errorf("reading PNG chunk type: %w", err)
		}

		kind := string(chunkType[:])
		if kind == "IEND" {
			return nil, ErrMissingWorkflowChunk
		}

		if kind != "tEXt" && kind != "iTXt" {
			// Skip the payload and the 4-byte CRC.
			if _, err := r.Seek(int64(length)+4, io.SeekCurrent); err != nil {
				return nil, ErrMissingWorkflowChunk
			}
			continue
		}

		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("reading PNG %s chunk: %w", kind, err)
		}
		if _, err := r.Seek(4, io.SeekCurrent); err != nil {
			return nil, ErrMissingWorkflowChunk
		}

		key, text, ok := parseTextChunk(kind, payload)
		if !ok || key != metadataKey {
			continue
		}
		return decodePayload(text)
	}
}

// parseTextChunk extracts the keyword and text from a tEXt or iTXt chunk
// payload, inflating compressed iTXt text when flagged.
func parseTextChunk(kind string, payload []byte) (key string, text []byte, ok bool) {
	sep := bytes.IndexByte(payload, 0)
	if sep < 0 {
		return "", nil, false
	}
	key = string(payload[:sep])
	rest := payload[sep+1:]

	if kind == "tEXt" {
		return key, inflateIfZlib(rest), true
	}

	// iTXt: compression flag, compression method, then two further
	// null-terminated fields (language tag, translated keyword).
	if len(rest) < 2 {
		return "", nil, false
	}
	compressed := rest[0] == 1
	rest = rest[2:]
	for i := 0; i < 2; i++ {
		n := bytes.IndexByte(rest, 0)
		if n < 0 {
			return "", nil, false
		}
		rest = rest[n+1:]
	}

	if compressed {
		zr, err := zlib.NewReader(bytes.NewReader(rest))
		if err != nil {
			return "", nil, false
		}
		defer func() { _ = zr.Close() }()
		inflated, err := io.ReadAll(zr)
		if err != nil {
			return "", nil, false
		}
		return key, inflated, true
	}
	return key, rest, true
}

// inflateIfZlib transparently decompresses payloads that some exporters
// deflate even inside uncompressed chunk types. Plain text passes through.
func inflateIfZlib(data []byte) []byte {
	if len(data) < 2 || data[0] != 0x78 {
		return data
	}
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return data
	}
	defer func() { _ = zr.Close() }()
	inflated, err := io.ReadAll(zr)
	if err != nil {
		return data
	}
	return inflated
}
