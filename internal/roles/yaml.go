package roles

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadDefinition decodes a YAML catalog definition. Unknown keys are rejected so a
// typo in a table name cannot silently leave a table empty.
func LoadDefinition(r io.Reader) (Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return Definition{}, &ConfigurationError{Problems: []string{"empty catalog definition"}}
		}
		return Definition{}, &ConfigurationError{Problems: []string{fmt.Sprintf("decode: %v", err)}}
	}
	return def, nil
}

// LoadCatalogFile reads and validates the catalog at path.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open role catalog: %w", err)
	}
	defer f.Close()

	def, err := LoadDefinition(f)
	if err != nil {
		return nil, err
	}
	return NewCatalog(def)
}

// WriteDefinition encodes def as YAML. LoadDefinition(WriteDefinition(def)) yields
// a definition that builds an equivalent catalog.
func WriteDefinition(w io.Writer, def Definition) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(def); err != nil {
		return fmt.Errorf("encode role catalog: %w", err)
	}
	return enc.Close()
}
