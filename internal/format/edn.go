package format

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteEDN writes an EDN rendering of v: maps with keyword keys, vectors,
// strings, numbers, booleans and nil.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	x, err := generic(v)
	if err != nil {
		return err
	}
	e := ednWriter{pretty: pretty}
	e.value(x, 0)
	e.sb.WriteByte('\n')
	_, err = io.WriteString(w, e.sb.String())
	return err
}

type ednWriter struct {
	sb     strings.Builder
	pretty bool
}

func (e *ednWriter) value(v any, level int) {
	switch t := v.(type) {
	case nil:
		e.sb.WriteString("nil")
	case bool:
		e.sb.WriteString(strconv.FormatBool(t))
	case string:
		e.sb.WriteString(strconv.Quote(t))
	case float64:
		if t == float64(int64(t)) {
			e.sb.WriteString(strconv.FormatInt(int64(t), 10))
			return
		}
		e.sb.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
	case []any:
		e.seq('[', ']', len(t), level, func(i int) { e.value(t[i], level+1) })
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		e.seq('{', '}', len(keys), level, func(i int) {
			e.sb.WriteByte(':')
			e.sb.WriteString(keyword(keys[i]))
			e.sb.WriteByte(' ')
			e.value(t[keys[i]], level+1)
		})
	default:
		e.sb.WriteString(strconv.Quote(fmt.Sprint(v)))
	}
}

func (e *ednWriter) seq(open, close byte, n, level int, item func(i int)) {
	e.sb.WriteByte(open)
	if n == 0 {
		e.sb.WriteByte(close)
		return
	}
	for i := 0; i < n; i++ {
		switch {
		case e.pretty:
			e.sb.WriteByte('\n')
			e.sb.WriteString(strings.Repeat("  ", level+1))
		case i > 0:
			e.sb.WriteByte(' ')
		}
		item(i)
	}
	if e.pretty {
		e.sb.WriteByte('\n')
		e.sb.WriteString(strings.Repeat("  ", level))
	}
	e.sb.WriteByte(close)
}

func keyword(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "-")
}
