// Package keyring wraps zalando/go-keyring with timeouts and stores registry
// tokens in the OS keychain.
//
// Raw operations (Set, Get, Delete) live in this file. Registry token
// accessors live in token.go.
package keyring

import (
	"errors"
	"time"

	"github.com/zalando/go-keyring"
)

// ErrNotFound is returned when no secret exists for the given service+user.
var ErrNotFound = errors.New("secret not found in keyring")

// Timeout bounds every keychain call. Some backends block on an unlock prompt.
const Timeout = 3 * time.Second

// TimeoutError is returned when a keyring operation exceeds the deadline.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return "timeout while trying to " + e.Op + " keyring"
}

// withTimeout runs fn on its own goroutine and gives up after Timeout.
func withTimeout[T any](op string, fn func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		val, err := fn()
		ch <- result{val, err}
	}()

	select {
	case res := <-ch:
		return res.val, res.err
	case <-time.After(Timeout):
		var zero T
		return zero, &TimeoutError{Op: op}
	}
}

// Set stores a secret in the keyring for the given service and user.
func Set(service, user, secret string) error {
	_, err := withTimeout("set secret in", func() (struct{}, error) {
		return struct{}{}, keyring.Set(service, user, secret)
	})
	return err
}

// Get retrieves a secret from the keyring for the given service and user.
func Get(service, user string) (string, error) {
	val, err := withTimeout("get secret from", func() (string, error) {
		return keyring.Get(service, user)
	})
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return val, err
}

// Delete removes a secret from the keyring for the given service and user.
// Deleting a missing secret returns ErrNotFound.
func Delete(service, user string) error {
	_, err := withTimeout("delete secret from", func() (struct{}, error) {
		return struct{}{}, keyring.Delete(service, user)
	})
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// MockInit sets up an in-memory keyring backend for tests.
func MockInit() {
	keyring.MockInit()
}

// MockInitWithError sets up an in-memory keyring backend that returns err for every operation.
func MockInitWithError(err error) {
	keyring.MockInitWithError(err)
}
