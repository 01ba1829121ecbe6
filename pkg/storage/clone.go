package storage

import (
	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/mitchellh/copystructure"
)

// Cloner lets a document type provide its own deep copy. Types that do not
// implement it are copied reflectively.
type Cloner[T any] interface {
	Clone() T
}

func clone[T any](v *T) (T, error) {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone(), nil
	}
	out, err := copystructure.Copy(*v)
	if err != nil {
		var zero T
		return zero, errors.Wrap(err, errors.ErrInternal, "failed to copy document")
	}
	if out == nil {
		var zero T
		return zero, nil
	}
	return out.(T), nil
}
