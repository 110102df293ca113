package format

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// cborMode emits deterministic (core deterministic encoding) output so equal
// boards encode to equal bytes.
var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("format: cbor encoder initialization failed: " + err.Error())
	}
}

func WriteCBOR(w io.Writer, v any) error {
	x, err := generic(v)
	if err != nil {
		return err
	}
	b, err := cborMode.Marshal(x)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
