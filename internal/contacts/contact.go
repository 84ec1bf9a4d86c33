// Package contacts manages the phone book the dial assistant matches
// against.
//
// Every contact carries, next to its display name, the normalized form the
// matcher compares with (and normalized variant spellings such as
// nicknames). Normalization happens exactly once, when a contact is
// created, so the matcher never sees a display form by accident.
package contacts

import (
	"fmt"

	"github.com/t4paN/ava/internal/greek"
)

// Contact is one phone book entry.
type Contact struct {
	// DisplayName is the name as entered by the user, shown in results and
	// used as the store key.
	DisplayName string

	// Normalized is the canonical comparable form of DisplayName.
	Normalized string

	// Tag is a free-form grouping label ("family", "work"). May be empty.
	Tag string

	// Variants holds additional normalized spellings: nicknames,
	// alternative transliterations. Never contains Normalized itself.
	Variants []string
}

// New builds a Contact from display forms, normalizing the name and every
// variant. Variants that normalize to the empty string or duplicate the
// canonical form are dropped.
func New(displayName, tag string, variants ...string) Contact {
	c := Contact{
		DisplayName: displayName,
		Normalized:  greek.Normalize(displayName),
		Tag:         tag,
	}
	seen := map[string]bool{c.Normalized: true}
	for _, v := range variants {
		n := greek.Normalize(v)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		c.Variants = append(c.Variants, n)
	}
	return c
}

// Forms returns every normalized spelling of the contact, canonical form
// first. The slice is freshly allocated on each call.
func (c Contact) Forms() []string {
	forms := make([]string, 0, 1+len(c.Variants))
	forms = append(forms, c.Normalized)
	forms = append(forms, c.Variants...)
	return forms
}

// Validate reports whether the contact can participate in matching.
func (c Contact) Validate() error {
	if c.DisplayName == "" {
		return fmt.Errorf("contacts: display name must not be empty")
	}
	if c.Normalized == "" {
		return fmt.Errorf("contacts: name %q normalizes to nothing; use Greek letters", c.DisplayName)
	}
	return nil
}
