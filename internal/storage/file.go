// Package storage persists the source registry as a YAML document.
package storage

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/gem-sources/internal/sources"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=file.go Store

var (
	// ErrNotFound is returned by Load when the sources file does not exist
	ErrNotFound = errors.New("sources file not found")

	// ErrRead is returned by Load when the sources file exists but cannot be read
	ErrRead = errors.New("failed to read sources file")

	// ErrParse is returned by Load when the sources file is not a valid registry document
	ErrParse = errors.New("malformed sources file")

	// ErrWrite is returned by Dump when the sources file cannot be written
	ErrWrite = errors.New("failed to write sources file")
)

const schemaURL = "sources.schema.json"

//go:embed sources.schema.json
var schemaJSON []byte

var documentSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse sources schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add sources schema: %w", err)
	}
	return c.Compile(schemaURL)
})

// Store loads and dumps a registry
type Store interface {
	// Load reads the registry. It fails with ErrNotFound, ErrRead or ErrParse.
	Load(ctx context.Context) (*sources.Registry, error)

	// Dump writes the registry, replacing any existing content. It fails with ErrWrite.
	Dump(ctx context.Context, reg *sources.Registry) error

	// Exists reports whether the sources file is present
	Exists() bool

	// Path returns the location of the sources file
	Path() string
}

// fileStore implements Store on a single YAML file
type fileStore struct {
	path string
}

// NewFileStore creates a store backed by the YAML file at path.
// The parent directory must exist by the time Dump is called.
func NewFileStore(path string) Store {
	return &fileStore{path: path}
}

func (f *fileStore) Path() string {
	return f.path
}

func (f *fileStore) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Load reads, validates and decodes the sources file
func (f *fileStore) Load(_ context.Context) (*sources.Registry, error) {
	// #nosec G304 -- the path is operator configuration
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, f.path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, f.path, err)
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}

	reg, err := sources.FromDocument(*doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, f.path, err)
	}
	return reg, nil
}

// Dump encodes the registry and replaces the sources file atomically
func (f *fileStore) Dump(_ context.Context, reg *sources.Registry) error {
	data, err := Encode(reg.ToDocument())
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, f.path, err)
	}

	if err := writeAtomic(f.path, data); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, f.path, err)
	}
	return nil
}

// writeAtomic writes data to a temporary file next to path and renames it over path.
// The temporary file never outlives a failed write.
func writeAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		_ = os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return err
	}
	return nil
}

// Decode parses and validates a sources document.
// The input must hold exactly one YAML document. Validation errors wrap ErrParse.
func Decode(data []byte) (*sources.Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var raw any
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		return nil, fmt.Errorf("%w: more than one YAML document", ErrParse)
	}

	schema, err := documentSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	var doc sources.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return &doc, nil
}

// Encode renders a sources document as YAML
func Encode(doc sources.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
