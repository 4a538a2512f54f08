package domain

import "errors"

var (
	// ErrInvalidMedia is returned for uploads whose MIME type is not allowed.
	ErrInvalidMedia = errors.New("unsupported media type")

	// ErrTooLarge is returned for uploads above the size cap of their type.
	ErrTooLarge = errors.New("media file too large")

	// ErrMediaDecode is returned when an upload's payload cannot be decoded.
	ErrMediaDecode = errors.New("media decode failed")

	// ErrStorageQuotaExceeded is returned when a write does not fit the store
	// or the configured budget.
	ErrStorageQuotaExceeded = errors.New("storage quota exceeded")

	// ErrCorruptState is returned when persisted state cannot be decoded.
	ErrCorruptState = errors.New("persisted state is corrupt")

	// ErrDuplicateSlug is returned when a slug is already used by another post.
	ErrDuplicateSlug = errors.New("slug already in use")

	// ErrInvalidPost is returned when a draft or patch misses required fields.
	ErrInvalidPost = errors.New("invalid post")

	// ErrInvalidComment is returned when a comment submission is incomplete.
	ErrInvalidComment = errors.New("invalid comment")
)
