package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string   `json:"name" yaml:"name"`
	Count   int      `json:"count" yaml:"count"`
	Flights []int32  `json:"flights" yaml:"flights"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

func TestCodecs(t *testing.T) {
	in := sample{Name: "AA101", Count: 3, Flights: []int32{1000, 1001}}

	for _, name := range []string{"json", "json-compact", "yaml"} {
		t.Run(name, func(t *testing.T) {
			c, ok := ByName(name)
			require.True(t, ok)

			b, err := c.Marshal(in)
			require.NoError(t, err)

			var out sample
			require.NoError(t, c.Unmarshal(b, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestJSON_Indent(t *testing.T) {
	b, err := JSON{Indent: true}.Marshal(sample{Name: "x"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(b), "}\n"))
	assert.Contains(t, string(b), "\n  \"name\": \"x\"")

	b, err = JSON{}.Marshal(sample{Name: "x"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "\n")
}

func TestByName_Unknown(t *testing.T) {
	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestForFile(t *testing.T) {
	assert.Equal(t, "yaml", ForFile("report.YML").Name())
	assert.Equal(t, "yaml", ForFile("out/report.yaml").Name())
	assert.Equal(t, "json", ForFile("report.json").Name())
	assert.Equal(t, "json", ForFile("report").Name())
	assert.Equal(t, ".json", Default.Ext())
}

func TestJSON_MarshalError(t *testing.T) {
	_, err := JSON{}.Marshal(make(chan int))
	assert.Error(t, err)
}
