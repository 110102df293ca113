package store

import (
	"encoding/hex"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

// Encoder and decoder are reused across calls; both are safe for
// concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("store: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("store: zstd decoder initialization failed: " + err.Error())
	}
}

// EncodeSnapshot returns the compact export of db, zstd-compressed.
func EncodeSnapshot(db *DB) ([]byte, error) {
	raw, err := Export(db, false)
	if err != nil {
		return nil, err
	}
	return Compress(raw), nil
}

// DecodeSnapshot reverses EncodeSnapshot.
func DecodeSnapshot(b []byte) (*DB, error) {
	raw, err := Decompress(b)
	if err != nil {
		return nil, err
	}
	return Import(raw)
}

// Digest is a BLAKE3 hash of the board's export form. Two boards with the
// same digest export identically.
func Digest(db *DB) (string, error) {
	raw, err := Export(db, false)
	if err != nil {
		return "", err
	}
	return DigestBytes(raw), nil
}

// DigestBytes is the hex BLAKE3-256 of b.
func DigestBytes(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func Compress(b []byte) []byte {
	return zstdEncoder.EncodeAll(b, nil)
}

func Decompress(b []byte) ([]byte, error) {
	raw, err := zstdDecoder.DecodeAll(b, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	return raw, nil
}
