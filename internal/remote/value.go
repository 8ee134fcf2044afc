package remote

import (
	"bytes"
	"fmt"
	"strconv"
)

// Value is a signal value on the wire. It is encoded as a decimal string
// because socket.io decodes JSON numbers into float64, which cannot hold
// every 64-bit value. Decoding also accepts `0x`/`0b` prefixed strings and
// bare JSON numbers; bare numbers are only exact up to 2^53.
type Value uint64

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, strconv.FormatUint(uint64(v), 10)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	text := string(bytes.TrimSpace(data))
	if text == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = unquoted
	}
	n, err := strconv.ParseUint(text, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid value %s: %w", data, err)
	}
	*v = Value(n)
	return nil
}
