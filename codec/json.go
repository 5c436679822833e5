package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// With Indent set, output is indented by two spaces and ends in a newline so
// reports read well on a terminal.
type JSON struct {
	Indent bool
}

// Marshal encodes the value to JSON.
func (c JSON) Marshal(v any) ([]byte, error) {
	if !c.Indent {
		return json.Marshal(v)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Ext returns ".json".
func (JSON) Ext() string { return ".json" }
