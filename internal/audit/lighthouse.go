package audit

import (
	"encoding/json"
	"fmt"

	"github.com/nelssec/perfaudit/internal/report"
)

const lighthouseSource = "lighthouse"

type lighthouseResult struct {
	Audits map[string]json.RawMessage `json:"audits"`
}

type lighthouseAudit struct {
	DisplayValue *string `json:"displayValue"`
}

type lighthouseDiagnostics struct {
	Details struct {
		Items []map[string]json.RawMessage `json:"items"`
	} `json:"details"`
}

// ExtractLighthouse reads the fixed metric and diagnostic sets out of a
// Lighthouse JSON result. Every key must be present; nothing is defaulted.
func ExtractLighthouse(data []byte) (report.Fields[string], report.Fields[float64], error) {
	var res lighthouseResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, nil, &ReportExtractionError{Source: lighthouseSource, Err: err}
	}
	if res.Audits == nil {
		return nil, nil, missing(lighthouseSource, "audits")
	}

	metrics := make(report.Fields[string], 0, len(report.MetricKeys))
	for _, key := range report.MetricKeys {
		raw, ok := res.Audits[key]
		if !ok {
			return nil, nil, missing(lighthouseSource, "audits."+key)
		}
		var a lighthouseAudit
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, nil, &ReportExtractionError{Source: lighthouseSource, Field: "audits." + key, Err: err}
		}
		if a.DisplayValue == nil {
			return nil, nil, missing(lighthouseSource, "audits."+key+".displayValue")
		}
		metrics.Set(key, *a.DisplayValue)
	}

	raw, ok := res.Audits["diagnostics"]
	if !ok {
		return nil, nil, missing(lighthouseSource, "audits.diagnostics")
	}
	var diag lighthouseDiagnostics
	if err := json.Unmarshal(raw, &diag); err != nil {
		return nil, nil, &ReportExtractionError{Source: lighthouseSource, Field: "audits.diagnostics", Err: err}
	}
	if len(diag.Details.Items) == 0 {
		return nil, nil, missing(lighthouseSource, "audits.diagnostics.details.items[0]")
	}

	item := diag.Details.Items[0]
	diagnostics := make(report.Fields[float64], 0, len(report.DiagnosticKeys))
	for _, key := range report.DiagnosticKeys {
		field := "audits.diagnostics.details.items[0]." + key
		value, ok := item[key]
		if !ok || string(value) == "null" {
			return nil, nil, missing(lighthouseSource, field)
		}
		var n float64
		if err := json.Unmarshal(value, &n); err != nil {
			return nil, nil, &ReportExtractionError{
				Source: lighthouseSource,
				Field:  field,
				Err:    fmt.Errorf("not a number: %s", value),
			}
		}
		diagnostics.Set(key, n)
	}

	return metrics, diagnostics, nil
}
