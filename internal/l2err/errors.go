// Package l2err defines the error taxonomy shared by the forwarding
// table core and the command surface built on top of it.
package l2err

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the table core, one per spec error code
// (-EINVAL, -ENOMEM, -EEXIST, -ENOENT).
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrAlreadyExists   = errors.New("already exists")
	ErrNotFound        = errors.New("not found")
	ErrOutOfMemory     = errors.New("out of space")
)

// MACError wraps a sentinel error with the MAC string that caused it,
// for command-layer diagnostics.
type MACError struct {
	Addr string
	Err  error
}

func (e *MACError) Error() string {
	return fmt.Sprintf("%s: %v", e.Addr, e.Err)
}

func (e *MACError) Unwrap() error {
	return e.Err
}

// Mac wraps err with the offending MAC address string.
func Mac(addr string, err error) error {
	if err == nil {
		return nil
	}
	return &MACError{Addr: addr, Err: err}
}
