package contacts

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the top-level structure of a contacts YAML file.
//
// Example:
//
//	contacts:
//	  - name: "Δημήτρης Παπαδόπουλος"
//	    tag: family
//	    variants: ["Μίμης"]
//	  - name: "Μαρία"
type File struct {
	Contacts []Definition `yaml:"contacts"`
}

// Definition is one contact as written in YAML, in display form. Variants
// are normalized on import, so they can be written with accents and
// capitals like the name itself.
type Definition struct {
	Name     string   `yaml:"name"`
	Tag      string   `yaml:"tag"`
	Variants []string `yaml:"variants"`
}

// LoadFile reads and parses a contacts YAML file from disk.
func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("contacts: open file %q: %w", path, err)
	}
	defer f.Close()

	cf, err := LoadReader(f)
	if err != nil {
		return nil, fmt.Errorf("contacts: parse file %q: %w", path, err)
	}
	return cf, nil
}

// LoadReader parses contacts YAML from an [io.Reader]. The reader is
// consumed entirely; the caller is responsible for closing it.
func LoadReader(r io.Reader) (*File, error) {
	var cf File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // reject unknown keys to catch typos
	if err := dec.Decode(&cf); err != nil {
		return nil, fmt.Errorf("contacts: decode yaml: %w", err)
	}
	return &cf, nil
}

// Import normalizes and adds every definition in file to store. Returns the
// number of contacts successfully imported; the first failure aborts the
// import and returns the count so far.
func Import(ctx context.Context, store Store, file *File) (int, error) {
	if file == nil {
		return 0, fmt.Errorf("contacts: file must not be nil")
	}
	count := 0
	for i, def := range file.Contacts {
		c := New(def.Name, def.Tag, def.Variants...)
		if err := store.Add(ctx, c); err != nil {
			return count, fmt.Errorf("contacts: import at index %d (name %q): %w", i, def.Name, err)
		}
		count++
	}
	return count, nil
}
