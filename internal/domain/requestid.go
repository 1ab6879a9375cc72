package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// RequestID identifies a single request/response cycle. It is a UUIDv7:
// the leading 48 bits hold a millisecond Unix timestamp and the rest is
// random, so IDs sort roughly by creation time.
type RequestID struct {
	u uuid.UUID
}

// NewRequestID returns a fresh time-ordered request ID.
// IDs generated later in the same process compare greater or equal.
func NewRequestID() RequestID {
	// NewV7 only fails if the system random source does.
	return RequestID{u: uuid.Must(uuid.NewV7())}
}

// ParseRequestID parses the canonical hyphenated form of a request ID.
func ParseRequestID(s string) (RequestID, error) {
	if len(s) != 36 {
		return RequestID{}, fmt.Errorf("%w: %q", ErrInvalidRequestID, s)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return RequestID{}, fmt.Errorf("%w: %v", ErrInvalidRequestID, err)
	}
	if u.Version() != 7 {
		return RequestID{}, fmt.Errorf("%w: version %d", ErrInvalidRequestID, u.Version())
	}
	return RequestID{u: u}, nil
}

// String returns the 36-character lowercase hyphenated form.
func (id RequestID) String() string {
	return id.u.String()
}

// IsZero reports whether id was never assigned.
func (id RequestID) IsZero() bool {
	return id.u == uuid.Nil
}

// Compare orders request IDs by their byte representation, which for
// UUIDv7 is creation order.
func (id RequestID) Compare(other RequestID) int {
	for i := range id.u {
		switch {
		case id.u[i] < other.u[i]:
			return -1
		case id.u[i] > other.u[i]:
			return 1
		}
	}
	return 0
}
