package utils

import "encoding/binary"

func Uint32ToBytes(val uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, val)
	return b
}

// BytesToUint32 decodes a value written by Uint32ToBytes. Shorter inputs are
// treated as big endian integers of their own width.
func BytesToUint32(b []byte) uint32 {
	if len(b) >= 4 {
		return binary.BigEndian.Uint32(b)
	}

	value := uint32(0)
	for _, v := range b {
		value = value<<8 | uint32(v)
	}

	return value
}
