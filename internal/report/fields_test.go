package report_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nelssec/perfaudit/internal/report"
)

func TestFields_JSONKeepsInsertionOrder(t *testing.T) {
	var f report.Fields[string]
	f.Set("speed-index", "1.2 s")
	f.Set("bootup-time", "0.4 s")
	f.Set("cumulative-layout-shift", "0.01")

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"speed-index":"1.2 s","bootup-time":"0.4 s","cumulative-layout-shift":"0.01"}`, string(data))

	var back report.Fields[string]
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, f, back)
}

func TestFields_SetOverwritesInPlace(t *testing.T) {
	var f report.Fields[float64]
	f.Set("numRequests", 10)
	f.Set("numFonts", 2)
	f.Set("numRequests", 12)

	require.Len(t, f, 2)
	assert.Equal(t, "numRequests", f[0].Key)

	v, ok := f.Get("numRequests")
	assert.True(t, ok)
	assert.Equal(t, 12.0, v)

	_, ok = f.Get("numScripts")
	assert.False(t, ok)
}

func TestFields_EmptyMarshalsAsObject(t *testing.T) {
	data, err := json.Marshal(report.Fields[float64](nil))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestFields_UnmarshalRejectsNonObject(t *testing.T) {
	var f report.Fields[string]
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &f))
}

func TestFields_YAMLKeepsInsertionOrder(t *testing.T) {
	var f report.Fields[float64]
	f.Set("numRequests", 41)
	f.Set("totalByteWeight", 532123)

	data, err := yaml.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, "numRequests: 41\ntotalByteWeight: 532123\n", string(data))

	var back report.Fields[float64]
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, f, back)
}
