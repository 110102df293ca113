package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// Write writes v in the requested format.
//
// Supported formats:
// - json (default)
// - edn
// - yaml
// - cbor (binary; pretty is ignored)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "edn":
		return WriteEDN(w, v, pretty)
	case "yaml", "yml":
		return WriteYAML(w, v)
	case "cbor":
		return WriteCBOR(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON followed by a newline.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// generic round-trips v through JSON so every encoder sees the same field
// names (json tags) and the same value shapes.
func generic(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return nil, err
	}
	return x, nil
}
