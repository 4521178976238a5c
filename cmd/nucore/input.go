package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nucore/internal/plugin"
	"nucore/internal/source"
	"nucore/internal/value"
)

// document is one loaded input file.
type document struct {
	Path  string
	File  *source.File // only for text inputs whose spans point into the file
	Value value.Value
}

// codecForPath picks the wire codec by file extension.
func codecForPath(path string) (plugin.Codec, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp", ".msgpack":
		return plugin.MsgpackCodec{}, true
	case ".json":
		return plugin.JSONCodec{}, true
	default:
		return nil, false
	}
}

// loadDocument reads a TOML document or a single wire frame. Wire custom
// values of types the registry does not know fall back to their base value.
func loadDocument(path string, reg *plugin.Registry, doLift bool) (document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc := document{Path: path}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		doc.File = source.NewFile(path, data)
		if doc.Value, err = value.FromTOML(string(data)); err != nil {
			return doc, err
		}
	} else {
		c, ok := codecForPath(path)
		if !ok {
			return doc, fmt.Errorf("%s: unsupported input (expected .toml, .msgpack, .mp or .json)", path)
		}
		w, err := c.Unmarshal(data)
		if err != nil {
			return doc, err
		}
		if doc.Value, err = reg.DecodeValueOrFallback(w); err != nil {
			return doc, err
		}
	}

	if doLift {
		doc.Value = lift(doc.Value)
	}
	return doc, nil
}
