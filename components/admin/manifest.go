package admin

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-inkhub/components/datatable"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion is the supported resource manifest format.
	ManifestVersion = manifestVersionV1
)

// ManifestDocument is a YAML file declaring extra or overriding resources.
type ManifestDocument struct {
	Version   string     `json:"version" yaml:"version"`
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	Resources []Resource `json:"resources" yaml:"resources"`
	Source    string     `json:"-" yaml:"-"`
}

// LoadManifestFile reads a manifest and registers its resources.
func (r *Registry) LoadManifestFile(path string) (*ManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument registers every resource of a decoded manifest.
func (r *Registry) LoadManifestDocument(doc *ManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("admin: manifest document is nil")
	}
	for _, res := range doc.Resources {
		if err := r.Register(res); err != nil {
			return fmt.Errorf("admin: register resource %s from %s: %w", res.Code, doc.Source, err)
		}
	}
	return nil
}

// ReadManifest decodes a manifest file without registering it.
func ReadManifest(path string) (*ManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("admin: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("admin: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader. Unknown keys are errors.
func DecodeManifest(r io.Reader) (*ManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc ManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("admin: manifest is empty")
		}
		return nil, fmt.Errorf("admin: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the version and that resource codes are unique.
func (doc *ManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("admin: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Resources))
	for idx, res := range doc.Resources {
		if res.Code == "" {
			return fmt.Errorf("admin: manifest resource at index %d is missing code", idx)
		}
		if _, exists := seen[res.Code]; exists {
			return fmt.Errorf("admin: manifest duplicates resource %s", res.Code)
		}
		seen[res.Code] = struct{}{}
		if err := validateResource(res); err != nil {
			return err
		}
	}
	return nil
}

func (doc *ManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	for i := range doc.Resources {
		res := &doc.Resources[i]
		if res.Section == "" {
			res.Section = res.Code
		}
		for j := range res.Schema.Columns {
			if res.Schema.Columns[j].Type == "" {
				res.Schema.Columns[j].Type = datatable.ColumnText
			}
		}
	}
}
