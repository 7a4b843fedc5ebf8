package report

// Fixed Lighthouse audit keys whose displayValue is recorded, in report order.
var MetricKeys = []string{
	"first-contentful-paint",
	"largest-contentful-paint",
	"first-meaningful-paint",
	"speed-index",
	"total-blocking-time",
	"max-potential-fid",
	"cumulative-layout-shift",
	"interactive",
	"server-response-time",
	"bootup-time",
}

// Fixed fields read from the first item of the diagnostics audit.
var DiagnosticKeys = []string{
	"numRequests",
	"numScripts",
	"numStylesheets",
	"numFonts",
	"totalByteWeight",
}

// Report is the result of one audit run. Optional fields are nil or empty
// when the step that produces them was not enabled.
type Report struct {
	Vulnerabilities       int             `json:"vulnerabilities" yaml:"vulnerabilities"`
	ProdNodeModulesCount  int             `json:"prodNodeModulesCount" yaml:"prodNodeModulesCount"`
	ProdNodeModulesSize   string          `json:"prodNodeModulesSize,omitempty" yaml:"prodNodeModulesSize,omitempty"`
	AllNodeModulesCount   *int            `json:"allNodeModulesCount,omitempty" yaml:"allNodeModulesCount,omitempty"`
	AllNodeModulesSize    string          `json:"allNodeModulesSize,omitempty" yaml:"allNodeModulesSize,omitempty"`
	ProdInstallTimeResult string          `json:"prodInstallTimeResult,omitempty" yaml:"prodInstallTimeResult,omitempty"`
	InstallTimeResult     string          `json:"installTimeResult,omitempty" yaml:"installTimeResult,omitempty"`
	LightHouseTestResults Fields[string]  `json:"lightHouseTestResults" yaml:"lightHouseTestResults"`
	DiagnosticResults     Fields[float64] `json:"diagnosticPropertyResults" yaml:"diagnosticPropertyResults"`
	ElapsedBuildTime      string          `json:"elapsedBuildTime" yaml:"elapsedBuildTime"`
	ElapsedDeployTime     string          `json:"elapsedDeployTime,omitempty" yaml:"elapsedDeployTime,omitempty"`
}
