// Package apperrors defines the error taxonomy shared by every layer of
// go-chat-keeper. Each failure raised by the storage, provider, or service
// layers wraps one of the kind sentinels below, so callers can match a whole
// class of failures with a single [errors.Is] check against [Err] or a
// specific kind.
package apperrors

import (
	"errors"
	"fmt"
)

// Err is the common base of the taxonomy. Every kind sentinel wraps it, so
// errors.Is(err, apperrors.Err) matches any application-originated error.
var Err = errors.New("chat-keeper")

// Kind sentinels. Callers should use [errors.Is] to match against these values.
var (
	// ErrStorage marks infrastructural storage failures: an uninitialized
	// connection, a driver-level fault, malformed migration SQL, or an I/O
	// failure while reading a migration file. Fatal to the operation in
	// progress and never silently swallowed.
	ErrStorage = fmt.Errorf("%w: storage", Err)

	// ErrRepository marks business-rule violations surfaced from the store,
	// specifically uniqueness/integrity constraint violations. Recoverable
	// by the caller (e.g. fall back to a lookup).
	ErrRepository = fmt.Errorf("%w: repository", Err)

	// ErrConfiguration marks invalid or missing configuration.
	ErrConfiguration = fmt.Errorf("%w: configuration", Err)

	// ErrValidation marks rejected input data.
	ErrValidation = fmt.Errorf("%w: validation", Err)

	// ErrProvider marks language-model provider failures.
	ErrProvider = fmt.Errorf("%w: provider", Err)

	// ErrAuthentication marks failed session-token checks.
	ErrAuthentication = fmt.Errorf("%w: authentication", Err)
)

// StorageError wraps a low-level storage fault with the operation that
// produced it. It unwraps to both [ErrStorage] and the original cause.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage error during %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("storage error during %s", e.Op)
}

func (e *StorageError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrStorage, e.Cause}
	}
	return []error{ErrStorage}
}

// NewStorageError wraps cause as a storage-kind error for the given operation.
func NewStorageError(op string, cause error) error {
	return &StorageError{Op: op, Cause: cause}
}

// RepositoryError carries the caller-supplied human-readable message for an
// integrity violation, e.g. "user already exists: alice". It unwraps to
// [ErrRepository] and the driver-level cause.
type RepositoryError struct {
	Message string
	Cause   error
}

func (e *RepositoryError) Error() string {
	return e.Message
}

func (e *RepositoryError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrRepository, e.Cause}
	}
	return []error{ErrRepository}
}

// NewRepositoryError wraps cause as a repository-kind error with msg as the
// caller-visible text.
func NewRepositoryError(msg string, cause error) error {
	return &RepositoryError{Message: msg, Cause: cause}
}

// ProviderError wraps a model-backend failure with the provider's name.
type ProviderError struct {
	Provider string
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %s failed: %v", e.Provider, e.Cause)
	}
	return fmt.Sprintf("provider %s failed", e.Provider)
}

func (e *ProviderError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrProvider, e.Cause}
	}
	return []error{ErrProvider}
}

// NewProviderError wraps cause as a provider-kind error attributed to the
// named provider.
func NewProviderError(provider string, cause error) error {
	return &ProviderError{Provider: provider, Cause: cause}
}

// IsStorage reports whether err is a storage-kind error.
func IsStorage(err error) bool { return errors.Is(err, ErrStorage) }

// IsRepository reports whether err is a repository-kind error.
func IsRepository(err error) bool { return errors.Is(err, ErrRepository) }

// IsProvider reports whether err is a provider-kind error.
func IsProvider(err error) bool { return errors.Is(err, ErrProvider) }

// IsAuthentication reports whether err is an authentication-kind error.
func IsAuthentication(err error) bool { return errors.Is(err, ErrAuthentication) }
