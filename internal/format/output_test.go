package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

type sample struct {
	ID       string   `json:"id"`
	ParentID *string  `json:"parentId"`
	Width    float64  `json:"width"`
	Ratio    float64  `json:"ratio"`
	Children []string `json:"childrenIds"`
}

func TestWriteEDN(t *testing.T) {
	var buf bytes.Buffer
	v := sample{ID: "task-a", Width: 240, Ratio: 0.3, Children: []string{"task-b"}}
	if err := WriteEDN(&buf, v, false); err != nil {
		t.Fatalf("WriteEDN: %v", err)
	}
	want := `{:childrenIds ["task-b"] :id "task-a" :parentId nil :ratio 0.3 :width 240}` + "\n"
	if buf.String() != want {
		t.Fatalf("expected %q; got %q", want, buf.String())
	}

	buf.Reset()
	if err := WriteEDN(&buf, map[string]any{"tasks": []any{}}, true); err != nil {
		t.Fatalf("WriteEDN: %v", err)
	}
	if buf.String() != "{\n  :tasks []\n}\n" {
		t.Fatalf("unexpected pretty edn %q", buf.String())
	}
}

func TestWriteYAML_UsesJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample{ID: "task-a", Width: 240}, "yaml", false); err != nil {
		t.Fatalf("Write yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "parentId: null") {
		t.Fatalf("expected json field names in yaml; got %s", buf.String())
	}
	var back map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("yaml output did not parse: %v", err)
	}
	if back["id"] != "task-a" {
		t.Fatalf("expected id task-a; got %v", back["id"])
	}
}

func TestWriteCBOR_Deterministic(t *testing.T) {
	v := map[string]any{"b": 1, "a": []string{"x"}}
	var b1, b2 bytes.Buffer
	if err := Write(&b1, v, "cbor", false); err != nil {
		t.Fatalf("Write cbor: %v", err)
	}
	if err := Write(&b2, v, "cbor", true); err != nil {
		t.Fatalf("Write cbor: %v", err)
	}
	if !bytes.Equal(b1.Bytes(), b2.Bytes()) {
		t.Fatalf("expected identical cbor output")
	}
	var back map[string]any
	if err := cbor.Unmarshal(b1.Bytes(), &back); err != nil {
		t.Fatalf("cbor output did not decode: %v", err)
	}
	if len(back) != 2 {
		t.Fatalf("expected 2 keys; got %v", back)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "xml", false); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
