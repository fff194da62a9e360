package powerplan

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// Windows GUIDs store Data1..Data3 in native little-endian order, while
// uuid.UUID holds RFC 4122 big-endian bytes. These helpers convert the
// raw 16-byte GUID layout used by the power APIs and the persisted
// AfkTargetPlan value.

func guidBytesToUUID(b [16]byte) uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint32(u[0:4], binary.LittleEndian.Uint32(b[0:4]))
	binary.BigEndian.PutUint16(u[4:6], binary.LittleEndian.Uint16(b[4:6]))
	binary.BigEndian.PutUint16(u[6:8], binary.LittleEndian.Uint16(b[6:8]))
	copy(u[8:], b[8:])
	return u
}

func uuidToGUIDBytes(u uuid.UUID) [16]byte {
	var b [16]byte
	binary.LittleEndian.PutUint32(b[0:4], binary.BigEndian.Uint32(u[0:4]))
	binary.LittleEndian.PutUint16(b[4:6], binary.BigEndian.Uint16(u[4:6]))
	binary.LittleEndian.PutUint16(b[6:8], binary.BigEndian.Uint16(u[6:8]))
	copy(b[8:], u[8:])
	return b
}
