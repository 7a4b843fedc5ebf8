package audit_test

import (
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nelssec/perfaudit/internal/audit"
	"github.com/nelssec/perfaudit/internal/report"
)

func loadLighthouse(t *testing.T) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile("testdata/lighthouse.json")
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func encode(t *testing.T, doc map[string]interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

func audits(doc map[string]interface{}) map[string]interface{} {
	return doc["audits"].(map[string]interface{})
}

func TestExtractLighthouse(t *testing.T) {
	metrics, diagnostics, err := audit.ExtractLighthouse(encode(t, loadLighthouse(t)))
	require.NoError(t, err)

	require.Len(t, metrics, len(report.MetricKeys))
	for i, key := range report.MetricKeys {
		assert.Equal(t, key, metrics[i].Key)
	}
	interactive, ok := metrics.Get("interactive")
	require.True(t, ok)
	assert.Equal(t, "3.2 s", interactive)

	require.Len(t, diagnostics, len(report.DiagnosticKeys))
	for i, key := range report.DiagnosticKeys {
		assert.Equal(t, key, diagnostics[i].Key)
	}
	weight, _ := diagnostics.Get("totalByteWeight")
	assert.Equal(t, 532123.0, weight)
}

func TestExtractLighthouse_MissingMetric(t *testing.T) {
	doc := loadLighthouse(t)
	delete(audits(doc), "interactive")

	_, _, err := audit.ExtractLighthouse(encode(t, doc))
	require.Error(t, err)

	var extractErr *audit.ReportExtractionError
	require.True(t, errors.As(err, &extractErr))
	assert.Equal(t, "audits.interactive", extractErr.Field)
	assert.ErrorIs(t, err, audit.ErrMissingField)
}

func TestExtractLighthouse_MissingDisplayValue(t *testing.T) {
	doc := loadLighthouse(t)
	delete(audits(doc)["speed-index"].(map[string]interface{}), "displayValue")

	_, _, err := audit.ExtractLighthouse(encode(t, doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audits.speed-index.displayValue")
}

func TestExtractLighthouse_DiagnosticsFailures(t *testing.T) {
	tests := []struct {
		name   string
		modify func(audits map[string]interface{})
		field  string
	}{
		{
			name:   "no diagnostics audit",
			modify: func(a map[string]interface{}) { delete(a, "diagnostics") },
			field:  "audits.diagnostics",
		},
		{
			name: "no items",
			modify: func(a map[string]interface{}) {
				a["diagnostics"] = map[string]interface{}{"details": map[string]interface{}{"items": []interface{}{}}}
			},
			field: "audits.diagnostics.details.items[0]",
		},
		{
			name: "missing property",
			modify: func(a map[string]interface{}) {
				item := a["diagnostics"].(map[string]interface{})["details"].(map[string]interface{})["items"].([]interface{})[0]
				delete(item.(map[string]interface{}), "numFonts")
			},
			field: "audits.diagnostics.details.items[0].numFonts",
		},
		{
			name: "non-numeric property",
			modify: func(a map[string]interface{}) {
				item := a["diagnostics"].(map[string]interface{})["details"].(map[string]interface{})["items"].([]interface{})[0]
				item.(map[string]interface{})["numScripts"] = "lots"
			},
			field: "audits.diagnostics.details.items[0].numScripts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := loadLighthouse(t)
			tt.modify(audits(doc))

			_, _, err := audit.ExtractLighthouse(encode(t, doc))
			require.Error(t, err)

			var extractErr *audit.ReportExtractionError
			require.True(t, errors.As(err, &extractErr))
			assert.Equal(t, tt.field, extractErr.Field)
		})
	}
}

func TestExtractLighthouse_NotJSON(t *testing.T) {
	_, _, err := audit.ExtractLighthouse([]byte("Runtime error encountered: CHROME_PATH not set"))
	require.Error(t, err)

	var extractErr *audit.ReportExtractionError
	assert.True(t, errors.As(err, &extractErr))
}

func TestExtractLighthouse_NoAudits(t *testing.T) {
	_, _, err := audit.ExtractLighthouse([]byte(`{"lighthouseVersion":"11.4.0"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, audit.ErrMissingField)
}
