package registry

import (
	"encoding/binary"

	apperrors "github.com/allisson/orderflow/internal/errors"
)

// MagicByte prefixes every registry-framed message.
const MagicByte byte = 0x00

// headerSize is the magic byte plus the big-endian schema id.
const headerSize = 5

// ErrInvalidFrame indicates a payload that does not carry the registry wire header.
var ErrInvalidFrame = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid registry wire frame")

// EncodeFrame prepends the magic byte and schema id to body.
func EncodeFrame(schemaID int, body []byte) []byte {
	frame := make([]byte, headerSize+len(body))
	frame[0] = MagicByte
	binary.BigEndian.PutUint32(frame[1:headerSize], uint32(schemaID)) //nolint:gosec // registry ids are positive int32
	copy(frame[headerSize:], body)
	return frame
}

// DecodeFrame splits a framed message into its schema id and body.
func DecodeFrame(data []byte) (int, []byte, error) {
	if len(data) < headerSize {
		return 0, nil, apperrors.Wrapf(ErrInvalidFrame, "payload has %d bytes", len(data))
	}
	if data[0] != MagicByte {
		return 0, nil, apperrors.Wrapf(ErrInvalidFrame, "unexpected magic byte 0x%02x", data[0])
	}
	return int(binary.BigEndian.Uint32(data[1:headerSize])), data[headerSize:], nil
}
