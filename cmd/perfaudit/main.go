package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nelssec/perfaudit/internal/audit"
	"github.com/nelssec/perfaudit/internal/config"
	"github.com/nelssec/perfaudit/internal/output"
	"github.com/nelssec/perfaudit/internal/report"
)

var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	cfgFile   string

	// runnerOptions supplies the audit collaborators; zero means the real ones.
	runnerOptions audit.Options
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, newRootCmd(), os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run executes cmd and maps its outcome to a process exit code.
func run(ctx context.Context, cmd *cobra.Command, args []string, errOut io.Writer) int {
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed, color.Bold).Fprint(errOut, "Error: ")
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "perfaudit",
		Short: "Dependency and page-performance audit for a web application",
		Long: `perfaudit audits the web application in the project directory.

It optionally reinstalls dependencies and records install times and sizes,
runs npm audit, serves the app and measures it with Lighthouse, times a cold
production build (and optionally a deploy), and aggregates everything into a
single report.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runAudit,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetStyling(!color.NoColor)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "YAML config file")
	flags.BoolP("verbose", "v", false, "Verbose logging")

	local := rootCmd.Flags()
	local.String("host", "", "Target host, e.g. http://localhost")
	local.String("port", "", "Target port")
	local.String("path", "", "Target path (default /)")
	local.Bool("install", false, "Reinstall dependencies and record install times and counts")
	local.Bool("filesize", false, "Measure node_modules size (with --install)")
	local.Bool("deploy", false, "Time `npm run deploy` after the build")
	local.Int("wait-ms", 0, "Settling delay before Lighthouse in milliseconds (default 10000)")
	local.Bool("ready-probe", true, "Return from the settling delay as soon as the port accepts connections")
	local.String("project-dir", "", "Directory of the application under audit (default .)")
	local.String("lighthouse-output", "", "Lighthouse JSON output path (default report.json)")
	local.String("build-dir", "", "Build output directory cleared before build and deploy (default .next)")
	local.Bool("write", false, "Write the report to disk")
	local.StringP("output-dir", "o", "", "Output directory for the report (default .)")
	local.String("format", "", "Report file format: json or yaml (default json)")
	local.Bool("json", false, "Print the report as JSON instead of a table")

	bindFlags(rootCmd, map[string]string{
		"verbose":           "verbose",
		"host":              "target.host",
		"port":              "target.port",
		"path":              "target.path",
		"install":           "steps.install",
		"filesize":          "steps.filesize",
		"deploy":            "steps.deploy",
		"wait-ms":           "steps.wait_ms",
		"ready-probe":       "steps.ready_probe",
		"project-dir":       "paths.project_dir",
		"lighthouse-output": "paths.lighthouse_output",
		"build-dir":         "paths.build_dir",
		"write":             "output.write",
		"output-dir":        "output.dir",
		"format":            "output.format",
	})

	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// bindFlags ties flags to viper keys. Flags only override the environment
// when set explicitly, so their zero defaults never mask LH_* variables.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			f = cmd.PersistentFlags().Lookup(flag)
		}
		viper.BindPFlag(key, f)
	}
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// With --json, stdout carries only the report.
	jsonOutput, _ := cmd.Flags().GetBool("json")
	logOut := cmd.OutOrStdout()
	if jsonOutput {
		logOut = cmd.ErrOrStderr()
	}

	opts := runnerOptions
	opts.Logger = output.NewLogger(logOut, cmd.ErrOrStderr(), cfg.Verbose)
	result, err := audit.NewRunner(cfg, opts).Run(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		data, err := report.Encode(result.Report, config.FormatJSON)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	output.PrintTable(cmd.OutOrStdout(), result.Report)
	return nil
}

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <report-file>",
		Short: "Print a saved audit report",
		Long:  `Print a report written with --write. JSON and YAML files are recognised by extension.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := report.Read(args[0])
			if err != nil {
				return err
			}

			jsonOutput, _ := cmd.Flags().GetBool("json")
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}

			output.PrintTable(cmd.OutOrStdout(), r)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the report as JSON instead of a table")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "perfaudit version %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Build time: %s\n", BuildTime)
		},
	}
}
