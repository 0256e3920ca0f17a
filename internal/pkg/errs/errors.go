package errs

import "errors"

var (
	ErrInvalid     = errors.New("invalid")
	ErrNotFound    = errors.New("not found")
	ErrExtraction  = errors.New("extraction failed")
	ErrUnavailable = errors.New("service unavailable")
	ErrInternal    = errors.New("internal")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

func IsExtraction(err error) bool {
	return errors.Is(err, ErrExtraction)
}
