package chain

import (
	"errors"
	"fmt"
)

// Registry failure taxonomy. Absence of a record on reads is never an
// error, it surfaces as a zero result.
var (
	// ErrAlreadyRegistered is returned when the address already holds an identity.
	ErrAlreadyRegistered = errors.New("address already registered")

	// ErrDuplicateID is returned when a bar or judicial id is held by another address.
	ErrDuplicateID = errors.New("identifier already registered to another address")

	// ErrUnregistered is returned by writes that require an existing identity.
	ErrUnregistered = errors.New("address not registered")

	// ErrCaseNotFound is returned by writes against an unknown case id.
	ErrCaseNotFound = errors.New("case not found")

	// ErrChain wraps infrastructure failures of the registry backend.
	ErrChain = errors.New("chain registry error")
)

func chainErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrChain, op, err)
}
