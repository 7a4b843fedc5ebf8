package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/nelssec/perfaudit/internal/report"
)

// PrintTable renders a report as a summary block followed by the metric and
// diagnostic tables.
func PrintTable(w io.Writer, r *report.Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance Audit Results")
	fmt.Fprintln(w, "=========================")
	fmt.Fprintf(w, "Vulnerabilities:      %d\n", r.Vulnerabilities)
	fmt.Fprintf(w, "Prod dependencies:    %d\n", r.ProdNodeModulesCount)
	if r.AllNodeModulesCount != nil {
		fmt.Fprintf(w, "All dependencies:     %d\n", *r.AllNodeModulesCount)
	}
	if r.ProdNodeModulesSize != "" {
		fmt.Fprintf(w, "Prod install size:    %s\n", r.ProdNodeModulesSize)
	}
	if r.AllNodeModulesSize != "" {
		fmt.Fprintf(w, "Full install size:    %s\n", r.AllNodeModulesSize)
	}
	if r.ProdInstallTimeResult != "" {
		fmt.Fprintf(w, "Prod install time:    %s\n", r.ProdInstallTimeResult)
	}
	if r.InstallTimeResult != "" {
		fmt.Fprintf(w, "Full install time:    %s\n", r.InstallTimeResult)
	}
	fmt.Fprintf(w, "Build time:           %ss\n", r.ElapsedBuildTime)
	if r.ElapsedDeployTime != "" {
		fmt.Fprintf(w, "Deploy time:          %ss\n", r.ElapsedDeployTime)
	}

	if len(r.LightHouseTestResults) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Lighthouse:")

		table := newTable(w, "Metric", "Value")
		for _, m := range r.LightHouseTestResults {
			table.Append([]string{m.Key, m.Value})
		}
		table.Render()
	}

	if len(r.DiagnosticResults) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Diagnostics:")

		table := newTable(w, "Property", "Value")
		for _, d := range r.DiagnosticResults {
			table.Append([]string{d.Key, strconv.FormatFloat(d.Value, 'f', -1, 64)})
		}
		table.Render()
	}

	fmt.Fprintln(w)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	return table
}
