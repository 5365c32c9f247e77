package unigraph

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/samber/lo"
)

var _encoder = base64.StdEncoding

// Cursor is an opaque position marker in the primary key order of a
// collection. It denotes the position at a key; traversal from a cursor is
// strictly exclusive. A nil *Cursor is the empty cursor.
//
// Wire format: base64 (standard alphabet, padded) of the decimal key.
//
// A decimal key too large for int64 is still a valid position: it lies past
// every stored key. Such a cursor keeps its digits so it encodes back
// unchanged.
type Cursor struct {
	key      int64
	overflow string
}

func NewCursor(key int64) *Cursor {
	return &Cursor{
		key: key,
	}
}

// EncodeKey returns the wire form of a cursor positioned at key.
func EncodeKey(key int64) string {
	return _encoder.EncodeToString([]byte(strconv.FormatInt(key, 10)))
}

// DecodeCursor parses a client supplied token. An empty token yields a nil
// cursor and no error. Any other token must decode to a non-empty string of
// decimal digits, otherwise ErrMalformedCursor is returned.
func DecodeCursor(b64String string) (*Cursor, error) {
	if len(b64String) == 0 {
		return nil, nil
	}

	keyBytes, err := _encoder.DecodeString(b64String)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode base64 encoded cursor: %w", ErrMalformedCursor, err)
	}

	keyString := string(keyBytes)
	if len(keyString) == 0 || !lo.Every(lo.NumbersCharset, []rune(keyString)) {
		return nil, fmt.Errorf("%w: cursor value '%s' is not a decimal key", ErrMalformedCursor, keyString)
	}

	key, err := strconv.ParseInt(keyString, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return &Cursor{
			key:      math.MaxInt64,
			overflow: keyString,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse cursor key: %w", ErrMalformedCursor, err)
	}

	return &Cursor{
		key: key,
	}, nil
}

// String - implements fmt.Stringer.
func (c *Cursor) String() string {
	if c == nil {
		return ""
	}
	if c.overflow != "" {
		return _encoder.EncodeToString([]byte(c.overflow))
	}

	return EncodeKey(c.key)
}

// IsEmpty reports whether the cursor denotes the start of a forward sequence.
func (c *Cursor) IsEmpty() bool {
	return c == nil
}

// IsPastKeys reports whether the cursor lies after every int64 key.
func (c *Cursor) IsPastKeys() bool {
	return c != nil && c.overflow != ""
}

// Key returns the primary key the cursor is positioned at. A cursor past
// every key reports math.MaxInt64.
func (c *Cursor) Key() int64 {
	if c == nil {
		return 0
	}

	return c.key
}

// MarshalText - implements encoding.TextMarshaler.
func (c *Cursor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText - implements encoding.TextUnmarshaler.
func (c *Cursor) UnmarshalText(text []byte) error {
	decoded, err := DecodeCursor(string(text))
	if err != nil {
		return err
	}
	if decoded == nil {
		return fmt.Errorf("%w: empty cursor", ErrMalformedCursor)
	}

	*c = *decoded

	return nil
}

var _ fmt.Stringer = (*Cursor)(nil)
