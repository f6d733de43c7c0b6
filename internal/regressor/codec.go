package regressor

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
)

// Format identifies how a model artifact is encoded on disk
type Format string

const (
	FormatGob    Format = "gob"
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

const sqliteMagic = "SQLite format 3\x00"

// Detect inspects an artifact's contents and reports its encoding.
// Anything that is neither SQLite nor a JSON object is treated as gob.
func Detect(data []byte) Format {
	if bytes.HasPrefix(data, []byte(sqliteMagic)) {
		return FormatSQLite
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed) {
		return FormatJSON
	}
	return FormatGob
}

// Load reads and validates the forest stored at path
func Load(path string) (*Forest, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	format := Detect(data)
	var f *Forest
	switch format {
	case FormatSQLite:
		f, err = LoadSQLite(path)
	case FormatJSON:
		f, err = DecodeJSON(data)
	default:
		f, err = DecodeGob(data)
	}
	if err != nil {
		return nil, format, fmt.Errorf("decode %s model %s: %w", format, path, err)
	}

	if err := f.Validate(); err != nil {
		return nil, format, fmt.Errorf("model %s: %w", path, err)
	}
	return f, format, nil
}

// DecodeJSON parses a forest exported as JSON
func DecodeJSON(data []byte) (*Forest, error) {
	var f Forest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// DecodeGob parses a forest written by Save
func DecodeGob(data []byte) (*Forest, error) {
	var f Forest
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Save writes the forest to path in gob encoding
func (f *Forest) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(f); err != nil {
		return err
	}
	return file.Close()
}
