package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrInvalid
	ErrNotFound
	ErrInvalidFile
	ErrFileTooLarge
	ErrNoTextFound
	ErrEmbedUnavailable
	ErrIndexUnavailable
	ErrTooMany
	ErrInternal
)
