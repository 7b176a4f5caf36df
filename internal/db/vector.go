package db

import (
	"encoding/binary"
	"errors"
	"math"
)

// EncodeVector packs v as little-endian float32 bytes, the FT VECTOR FLOAT32 layout.
func EncodeVector(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// DecodeVector unpacks little-endian float32 bytes.
func DecodeVector(s string) ([]float32, error) {
	if len(s)%4 != 0 {
		return nil, errors.New("vector blob length is not a multiple of 4")
	}
	v := make([]float32, len(s)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32([]byte(s[i*4 : i*4+4])))
	}
	return v, nil
}
