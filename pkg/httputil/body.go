package httputil

import (
	"fmt"
	"io"
)

// DefaultMaxBodySize bounds response body reads: 512 MiB.
const DefaultMaxBodySize int64 = 512 << 20

// ErrBodyTooLarge is returned by ReadLimited when the body exceeds the cap.
type ErrBodyTooLarge struct{ Limit int64 }

func (e *ErrBodyTooLarge) Error() string {
	return fmt.Sprintf("response body exceeds %d bytes", e.Limit)
}

// ReadLimited reads body up to limit bytes. A limit <= 0 means
// DefaultMaxBodySize. Bodies larger than the limit fail with
// *ErrBodyTooLarge rather than being silently truncated.
func ReadLimited(body io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, &ErrBodyTooLarge{Limit: limit}
	}
	return data, nil
}
