package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrUnauthorized
	ErrForbidden
	ErrNotFound
	ErrInvalid
	ErrConflict
	ErrTooMany
	ErrExpired
	ErrNotVerified
	ErrInternal
	ErrInvalidFile
	ErrUploadFailed
)
