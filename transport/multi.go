package transport

import (
	"fmt"
	"io"
	"strings"
)

// MultiError keeps track of multiple errors and coerces them into one error.
// errors.Is and errors.As look through every error it holds.
type MultiError []error

func (e MultiError) Unwrap() []error {
	return e
}

func (e MultiError) Error() string {
	switch len(e) {
	case 0:
		return ""
	case 1:
		return e[0].Error()
	default:
		errs := []string{}
		for _, err := range e {
			errs = append(errs, err.Error())
		}
		return fmt.Sprintf("%d errors: %s", len(e), strings.Join(errs, "; "))
	}
}

// MultiCloser keeps track of multiple closers and closes them all as one
// closer. Every closer is closed even when an earlier one fails. Host uses
// it to take all listeners down together.
type MultiCloser []io.Closer

func (c MultiCloser) Close() error {
	errors := MultiError{}
	for _, closer := range c {
		err := closer.Close()
		if err != nil {
			errors = append(errors, err)
		}
	}
	if len(errors) == 0 {
		return nil
	}
	return errors
}
