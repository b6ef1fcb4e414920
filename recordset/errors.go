package recordset

import (
	"strconv"
)

// IndexError reports which record of a set failed.
type IndexError struct {
	Index int
	Err   error
}

func (e *IndexError) Error() string {
	return "record " + strconv.Itoa(e.Index) + ": " + e.Err.Error()
}

func (e *IndexError) Unwrap() error {
	return e.Err
}
