package proc

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/tcpview/tcpview/pkg/model"
)

// TableError reports a socket table that could not be read.
type TableError struct {
	Path string
	Err  error
}

func (e *TableError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *TableError) Unwrap() error {
	return e.Err
}

func lookupFailure(err error) model.ProcessLookup {
	if errors.Is(err, fs.ErrPermission) {
		return model.Denied
	}
	return model.NotFound
}
