package audio

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrTransportDecode is returned when a base64 transport payload is malformed.
var ErrTransportDecode = errors.New("transport decode failed")

// DecodeTransport decodes a standard-base64 transport string into the exact
// original byte sequence. Invalid alphabet characters or incorrect padding
// return an error wrapping ErrTransportDecode; the result is never a
// silently truncated buffer.
func DecodeTransport(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransportDecode, err)
	}

	return data, nil
}

// EncodeTransport encodes raw bytes as a standard-base64 transport string.
// DecodeTransport(EncodeTransport(x)) == x for every byte sequence.
func EncodeTransport(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
