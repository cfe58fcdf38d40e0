package drdat

import "encoding/binary"

// putSample writes the low width bytes of v little-endian into b.
func putSample(b []byte, width int, v uint64) {
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	default:
		for i := range width {
			b[i] = byte(v >> (8 * i))
		}
	}
}

// sample reads a width byte little-endian unsigned integer from b.
func sample(b []byte, width int) uint64 {
	switch width {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	}
	var v uint64
	for i := range width {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
