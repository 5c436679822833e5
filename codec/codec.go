// Package codec centralizes report encoding.
//
// Reports written by skybench are self-describing through the file extension
// of the codec that produced them (see Ext).
package codec

import "strings"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
	// Ext is the file extension of encoded output, including the dot.
	Ext() string
}

// Default is the codec used when none is configured.
var Default Codec = JSON{Indent: true}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch strings.ToLower(name) {
	case "json":
		return JSON{Indent: true}, true
	case "json-compact":
		return JSON{}, true
	case "yaml", "yml":
		return YAML{}, true
	default:
		return nil, false
	}
}

// ForFile returns the codec matching the extension of name, or Default.
func ForFile(name string) Codec {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return YAML{}
	default:
		return Default
	}
}
