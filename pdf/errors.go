package pdf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// ErrorKind classifies document generation failures.
type ErrorKind int

const (
	Unexpected ErrorKind = iota
	Permission
	IO
)

func (k ErrorKind) String() string {
	switch k {
	case Permission:
		return "permission"
	case IO:
		return "io"
	default:
		return "unexpected"
	}
}

// RenderError is returned for any failure while producing PDF file.
type RenderError struct {
	Kind ErrorKind
	Err  error
}

func (e *RenderError) Error() string {
	switch e.Kind {
	case Permission:
		return fmt.Sprintf("unable to save PDF: %v", e.Err)
	case IO:
		return fmt.Sprintf("I/O error while creating PDF: %v", e.Err)
	default:
		return fmt.Sprintf("unexpected error creating PDF: %v", e.Err)
	}
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// classify wraps err into RenderError of appropriate kind.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var re *RenderError
	if errors.As(err, &re) {
		return err
	}

	var (
		pathErr *fs.PathError
		linkErr *os.LinkError
		sysErr  *os.SyscallError
		errno   syscall.Errno
	)
	switch {
	case errors.Is(err, fs.ErrPermission):
		return &RenderError{Kind: Permission, Err: err}
	case errors.As(err, &pathErr), errors.As(err, &linkErr), errors.As(err, &sysErr), errors.As(err, &errno):
		return &RenderError{Kind: IO, Err: err}
	default:
		return &RenderError{Kind: Unexpected, Err: err}
	}
}
