package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/lineage/pkg/lineage"
)

// =============================================================================
// Record Serialization API
// =============================================================================

// MarshalRecord converts a record to pretty-printed JSON bytes.
func MarshalRecord(r lineage.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteRecord(r, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteRecord writes a record as JSON to an io.Writer.
func WriteRecord(r lineage.Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteRecordFile writes a record to a JSON file.
func WriteRecordFile(r lineage.Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteRecord(r, f)
}

// ReadRecord decodes a JSON record and checks it names a focal entity.
func ReadRecord(r io.Reader) (lineage.Record, error) {
	var rec lineage.Record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return lineage.Record{}, fmt.Errorf("decode: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return lineage.Record{}, err
	}
	return rec, nil
}

// UnmarshalRecord decodes a record from bytes.
func UnmarshalRecord(data []byte) (lineage.Record, error) {
	return ReadRecord(bytes.NewReader(data))
}

// ReadRecordFile reads a record from a JSON file.
func ReadRecordFile(path string) (lineage.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return lineage.Record{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRecord(f)
}
