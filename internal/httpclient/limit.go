package httpclient

import (
	"errors"
	"fmt"
	"io"
)

// BodyTooLargeError reports a body that would exceed the configured cap.
// Capabilities and the model client treat it as permanent for the attempt:
// retrying the same endpoint yields the same oversized body.
type BodyTooLargeError struct {
	Limit int64
}

func (e *BodyTooLargeError) Error() string {
	return fmt.Sprintf("body larger than the %d byte cap", e.Limit)
}

// IsBodyTooLarge reports whether err came from the body cap.
func IsBodyTooLarge(err error) bool {
	var tooLarge *BodyTooLargeError
	return errors.As(err, &tooLarge)
}

// ReadAllWithLimit drains r up to limit bytes. A non-positive limit disables
// the cap. Oversized bodies fail with BodyTooLargeError instead of silently
// truncating, so callers never act on a partial payload.
func ReadAllWithLimit(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, err
	}

	// Probe a single extra byte to tell an exactly-limit body apart from an
	// oversized one.
	var probe [1]byte
	if n, _ := r.Read(probe[:]); n > 0 {
		return nil, &BodyTooLargeError{Limit: limit}
	}
	return data, nil
}
