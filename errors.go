package fdtforge

import "errors"

var (
	ErrBadMagic           = errors.New("fdtforge: invalid magic bytes")
	ErrUnsupportedVersion = errors.New("fdtforge: unsupported blob version")
	ErrOutOfBounds        = errors.New("fdtforge: offset out of bounds")
	ErrMalformedToken     = errors.New("fdtforge: malformed struct token")
	ErrTruncated          = errors.New("fdtforge: truncated record")
	ErrInvalidString      = errors.New("fdtforge: invalid string data")
	ErrNotFound           = errors.New("fdtforge: not found")
)
