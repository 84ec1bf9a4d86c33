package contacts

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get and Remove when no contact has the
// requested display name.
var ErrNotFound = errors.New("contact not found")

// ErrDuplicateName is returned by Add when a contact with the same display
// name already exists.
var ErrDuplicateName = errors.New("contact with that name already exists")

// Store manages phone book entries.
//
// All implementations must be safe for concurrent use.
type Store interface {
	// Add creates a new contact. The contact must pass [Contact.Validate].
	// Returns [ErrDuplicateName] if a contact with the same display name
	// exists.
	Add(ctx context.Context, c Contact) error

	// Get retrieves a contact by display name.
	// Returns [ErrNotFound] when no such contact exists.
	Get(ctx context.Context, displayName string) (Contact, error)

	// List returns all contacts ordered by display name.
	List(ctx context.Context) ([]Contact, error)

	// Remove deletes a contact by display name.
	// Returns [ErrNotFound] when no such contact exists.
	Remove(ctx context.Context, displayName string) error
}
