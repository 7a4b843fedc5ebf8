package output_test

import (
	"bytes"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"

	"github.com/nelssec/perfaudit/internal/output"
	"github.com/nelssec/perfaudit/internal/report"
)

func TestLogger_DebugOnlyWhenVerbose(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	var out, errOut bytes.Buffer
	quiet := output.NewLogger(&out, &errOut, false)
	quiet.Debugf("auditing dependencies...")
	quiet.Infof("testing %s", "http://localhost:3000/")
	assert.NotContains(t, out.String(), "auditing dependencies")
	assert.Contains(t, out.String(), "testing http://localhost:3000/")

	out.Reset()
	verbose := output.NewLogger(&out, &errOut, true)
	verbose.Debugf("auditing dependencies...")
	assert.Contains(t, out.String(), "auditing dependencies...")
}

func TestLogger_WarningsAndErrorsToErrorStream(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	var out, errOut bytes.Buffer
	log := output.NewLogger(&out, &errOut, false)
	log.Warnf("server not ready")
	log.Errorf("background process exited: %v", "exit status 1")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "server not ready")
	assert.Contains(t, errOut.String(), "exit status 1")
}

func TestPrintTable(t *testing.T) {
	all := 812
	r := &report.Report{
		Vulnerabilities:      3,
		ProdNodeModulesCount: 120,
		AllNodeModulesCount:  &all,
		InstallTimeResult:    "21s",
		ElapsedBuildTime:     "2.345",
	}
	r.LightHouseTestResults.Set("interactive", "3.2 s")
	r.DiagnosticResults.Set("totalByteWeight", 532123)

	var buf bytes.Buffer
	output.PrintTable(&buf, r)

	text := buf.String()
	assert.Contains(t, text, "Vulnerabilities:      3")
	assert.Contains(t, text, "All dependencies:     812")
	assert.Contains(t, text, "Full install time:    21s")
	assert.Contains(t, text, "Build time:           2.345s")
	assert.NotContains(t, text, "Deploy time")
	assert.NotContains(t, text, "Prod install size")
	assert.Contains(t, text, "interactive")
	assert.Contains(t, text, "3.2 s")
	assert.Contains(t, text, "532123")
}

func TestSetStyling_PlainOutput(t *testing.T) {
	output.SetStyling(false)
	defer output.SetStyling(true)

	var out, errOut bytes.Buffer
	log := output.NewLogger(&out, &errOut, false)
	log.Infof("testing %s", "http://localhost:3000/")

	assert.Contains(t, out.String(), "testing http://localhost:3000/")
	assert.NotContains(t, out.String(), "\x1b[", "no escape sequences without styling")
}
