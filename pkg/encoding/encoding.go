// Package encoding provides the character encodings a GEDCOM file may be
// stored in, and a decoder for each that converts raw bytes to UTF-8.
package encoding

import (
	"fmt"
	"strings"

	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
)

// Encoding identifies the character encoding of a GEDCOM byte stream.
// The set is closed; the zero value is not a valid encoding.
type Encoding int

const (
	ASCII Encoding = iota + 1
	ANSEL
	UnicodeLittleEndian
	UnicodeBigEndian
	UTF8
)

// All lists every supported encoding.
var All = []Encoding{ASCII, ANSEL, UnicodeLittleEndian, UnicodeBigEndian, UTF8}

// String returns the name used in diagnostics.
func (e Encoding) String() string {
	switch e {
	case ASCII:
		return "ASCII"
	case ANSEL:
		return "ANSEL"
	case UnicodeLittleEndian:
		return "UNICODE (LE)"
	case UnicodeBigEndian:
		return "UNICODE (BE)"
	case UTF8:
		return "UTF-8"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// CharValue returns the value a GEDCOM header's CHAR line uses for e.
func (e Encoding) CharValue() string {
	switch e {
	case UnicodeLittleEndian, UnicodeBigEndian:
		return "UNICODE"
	default:
		return e.String()
	}
}

// Valid reports whether e is one of the supported encodings.
func (e Encoding) Valid() bool {
	return e >= ASCII && e <= UTF8
}

// Parse maps a CHAR value or configuration name to an Encoding.
// Matching is case-insensitive. A bare "UNICODE" means little endian.
func Parse(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ascii", "us-ascii":
		return ASCII, nil
	case "ansel":
		return ANSEL, nil
	case "unicode", "utf-16", "utf-16le", "utf16le", "unicode-le", "unicode (le)":
		return UnicodeLittleEndian, nil
	case "utf-16be", "utf16be", "unicode-be", "unicode (be)":
		return UnicodeBigEndian, nil
	case "utf-8", "utf8":
		return UTF8, nil
	default:
		return 0, fmt.Errorf("unknown encoding %q (use %s)", name, supportedNames())
	}
}

// UnmarshalYAML lets configuration files name an encoding.
func (e *Encoding) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := Parse(name)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*e = parsed
	return nil
}

// MarshalYAML writes the configuration spelling of e.
func (e Encoding) MarshalYAML() (interface{}, error) {
	return e.configName(), nil
}

func (e Encoding) configName() string {
	switch e {
	case UnicodeLittleEndian:
		return "utf-16le"
	case UnicodeBigEndian:
		return "utf-16be"
	default:
		return e.String()
	}
}

// supportedNames lists the configuration spelling of every encoding.
func supportedNames() string {
	names := make([]string, 0, len(All))
	for _, e := range All {
		names = append(names, strings.ToLower(e.configName()))
	}
	return strings.Join(names, ", ")
}

// NewDecoder returns a fresh decoder that converts bytes in encoding e to
// UTF-8. Decoders hold state and must not be shared between streams.
func NewDecoder(e Encoding) (transform.Transformer, error) {
	switch e {
	case ASCII:
		return &asciiDecoder{}, nil
	case ANSEL:
		return &anselDecoder{}, nil
	case UnicodeLittleEndian:
		return &utf16Decoder{enc: e, bigEndian: false}, nil
	case UnicodeBigEndian:
		return &utf16Decoder{enc: e, bigEndian: true}, nil
	case UTF8:
		return &utf8Decoder{}, nil
	default:
		return nil, fmt.Errorf("no decoder for %s", e)
	}
}
