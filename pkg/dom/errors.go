package dom

import "errors"

// Sentinel errors for document operations.
var (
	ErrNotControl       = errors.New("dom: element is not a form control")
	ErrNotForm          = errors.New("dom: element is not a form")
	ErrInvalidSubmitter = errors.New("dom: submitter is not a submit button of the form")
	ErrTooManyFiles     = errors.New("dom: file input does not accept multiple files")
	ErrForeignElement   = errors.New("dom: element belongs to another document")
)

// IsInvalidSubmitter reports whether err was caused by an unusable submitter.
func IsInvalidSubmitter(err error) bool {
	return errors.Is(err, ErrInvalidSubmitter)
}
