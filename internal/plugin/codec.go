package plugin

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gowebpki/jcs"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/vmihailenco/msgpack/v5"

	"nucore/internal/diag"
	"nucore/internal/source"
	"nucore/internal/value"
)

// Codec turns wire trees into bytes and back.
type Codec interface {
	Name() string
	Marshal(w *WireValue) ([]byte, error)
	Unmarshal(data []byte) (*WireValue, error)
}

// CodecByName resolves "msgpack" or "json".
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "msgpack", "mp":
		return MsgpackCodec{}, nil
	case "json":
		return JSONCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q (expected: msgpack|json)", name)
	}
}

// MsgpackCodec is the compact default.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }

func (MsgpackCodec) Marshal(w *WireValue) ([]byte, error) {
	data, err := msgpack.Marshal(w)
	if err != nil {
		d := diag.Plugin(diag.PluginEncodeFailed, source.Unknown, "msgpack encoding failed")
		d.Err = err
		return nil, d
	}
	return data, nil
}

func (MsgpackCodec) Unmarshal(data []byte) (*WireValue, error) {
	var w WireValue
	if err := msgpack.Unmarshal(data, &w); err != nil {
		d := diag.Plugin(diag.PluginMalformedEnvelope, source.Unknown, "invalid msgpack frame")
		d.Err = err
		return nil, d
	}
	return &w, nil
}

// JSONCodec emits canonical JSON (RFC 8785), so equal trees encode to equal
// bytes, and validates input against the embedded wire schema before
// decoding it.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(w *WireValue) ([]byte, error) {
	if err := checkUTF8(w); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(w)
	if err != nil {
		d := diag.Plugin(diag.PluginEncodeFailed, source.Unknown, "json encoding failed")
		d.Err = err
		return nil, d
	}
	canon, err := jcs.Transform(raw)
	if err != nil {
		d := diag.Plugin(diag.PluginEncodeFailed, source.Unknown, "json canonicalisation failed")
		d.Err = err
		return nil, d
	}
	return canon, nil
}

// checkUTF8 rejects text JSON cannot carry unchanged: encoding/json would
// replace invalid bytes with U+FFFD.
func checkUTF8(w *WireValue) error {
	bad := func(what string) error {
		return diag.Plugin(diag.PluginEncodeFailed, source.Span{Start: w.Span[0], End: w.Span[1]},
			fmt.Sprintf("%s value has invalid UTF-8 in its %s; use the msgpack codec or binary data", w.Kind, what))
	}
	if !utf8.ValidString(w.Str) {
		return bad("text")
	}
	for _, c := range w.Cols {
		if !utf8.ValidString(c) {
			return bad("column names")
		}
	}
	for _, m := range w.Path {
		if !utf8.ValidString(m.Name) {
			return bad("path members")
		}
	}
	for e := w.Error; e != nil; e = e.Cause {
		if !utf8.ValidString(e.Message) || !utf8.ValidString(e.Help) {
			return bad("message")
		}
		for _, l := range e.Labels {
			if !utf8.ValidString(l.Text) {
				return bad("labels")
			}
		}
	}
	if c := w.Custom; c != nil {
		if !utf8.ValidString(c.Tag) || !utf8.ValidString(c.Source) || !validTypeText(c.Declared) {
			return bad("envelope")
		}
		if c.Fallback != nil {
			if err := checkUTF8(c.Fallback); err != nil {
				return err
			}
		}
	}
	for i := range w.Items {
		if err := checkUTF8(&w.Items[i]); err != nil {
			return err
		}
	}
	if w.Closure != nil {
		for i := range w.Closure.Captures {
			if err := checkUTF8(&w.Closure.Captures[i].Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func validTypeText(t WireType) bool {
	if !utf8.ValidString(t.Name) {
		return false
	}
	if t.Elem != nil && !validTypeText(*t.Elem) {
		return false
	}
	for _, f := range t.Fields {
		if !utf8.ValidString(f.Name) || !validTypeText(f.Type) {
			return false
		}
	}
	for _, a := range t.Alts {
		if !validTypeText(a) {
			return false
		}
	}
	return true
}

func (JSONCodec) Unmarshal(data []byte) (*WireValue, error) {
	schema, err := wireSchema()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		d := diag.Plugin(diag.PluginMalformedEnvelope, source.Unknown, "invalid json frame")
		d.Err = err
		return nil, d
	}
	if err := schema.Validate(doc); err != nil {
		d := diag.Plugin(diag.PluginMalformedEnvelope, source.Unknown, "json frame does not match the wire schema")
		d.Err = err
		return nil, d
	}

	var w WireValue
	if err := json.Unmarshal(data, &w); err != nil {
		d := diag.Plugin(diag.PluginMalformedEnvelope, source.Unknown, "invalid json frame")
		d.Err = err
		return nil, d
	}
	return &w, nil
}

//go:embed schema/wire-value.schema.json
var wireSchemaText string

const wireSchemaURL = "https://nucore.local/schemas/wire-value.schema.json"

var wireSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(wireSchemaURL, strings.NewReader(wireSchemaText)); err != nil {
		return nil, fmt.Errorf("wire schema load failed: %w", err)
	}
	s, err := c.Compile(wireSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("wire schema compile failed: %w", err)
	}
	return s, nil
})

// Marshal encodes a whole value tree with c.
func (r *Registry) Marshal(v value.Value, c Codec) ([]byte, error) {
	w, err := r.EncodeValue(v)
	if err != nil {
		return nil, err
	}
	return c.Marshal(w)
}

// Unmarshal decodes a value tree produced by Marshal.
func (r *Registry) Unmarshal(data []byte, c Codec) (value.Value, error) {
	w, err := c.Unmarshal(data)
	if err != nil {
		return value.Value{}, err
	}
	return r.DecodeValue(w)
}
