package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// UserID identifies the owner of a style profile. It is an opaque key;
// the only structural requirement is that it is non-empty and free of
// whitespace so it can be embedded in storage keys.
type UserID string

func (id UserID) String() string {
	return string(id)
}

// Validate checks if the UserID is usable as a storage key
func (id UserID) Validate() error {
	if id == "" {
		return goerr.New("user ID is required")
	}
	if strings.ContainsAny(string(id), " \t\n") {
		return goerr.New("user ID must not contain whitespace", goerr.V("id", string(id)))
	}
	return nil
}

// EmployeeID identifies the employee a nudge artifact is about
type EmployeeID string

func (id EmployeeID) String() string {
	return string(id)
}

// Validate checks if the EmployeeID is usable as a storage key
func (id EmployeeID) Validate() error {
	if id == "" {
		return goerr.New("employee ID is required")
	}
	if strings.ContainsAny(string(id), " \t\n") {
		return goerr.New("employee ID must not contain whitespace", goerr.V("id", string(id)))
	}
	return nil
}
