package errors

import (
	"fmt"

	"github.com/mwantia/vcat/data"
	"gitlab.com/tozd/go/errors"
)

// newError wraps the sentinel base with a formatted message and, if given,
// the underlying cause. errors.Is matches both base and cause.
func newError(base, err error, format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if err != nil {
		return errors.Errorf("%w: %s: %w", base, text, err)
	}

	return errors.Errorf("%w: %s", base, text)
}

// Errorf formats an error; %w verbs wrap their operands.
func Errorf(format string, args ...any) error {
	return errors.Errorf(format, args...)
}

// Join combines errs into one error, dropping nil values.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// NotExist reports a missing catalog path.
func NotExist(err error, path string) error {
	return newError(data.ErrNotExist, err, "'%s'", path)
}

// Exist reports a path that is already occupied.
func Exist(err error, path string) error {
	return newError(data.ErrExist, err, "'%s'", path)
}

// NotCollection reports a path that was expected to be a collection.
func NotCollection(err error, path string) error {
	return newError(data.ErrNotCollection, err, "'%s'", path)
}

// IsCollection reports a path that was expected to be a data object.
func IsCollection(err error, path string) error {
	return newError(data.ErrIsCollection, err, "'%s'", path)
}

// NotEmpty reports a non-recursive removal of a collection with children.
func NotEmpty(err error, path string) error {
	return newError(data.ErrNotEmpty, err, "'%s'", path)
}

// Unsupported reports an operation the catalog cannot perform.
func Unsupported(err error, op, path string) error {
	return newError(data.ErrUnsupported, err, "%s '%s'", op, path)
}

// Invalid reports a malformed argument.
func Invalid(err error, reason string) error {
	return newError(data.ErrInvalid, err, "%s", reason)
}
