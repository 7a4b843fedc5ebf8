package audit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nelssec/perfaudit/internal/config"
	"github.com/nelssec/perfaudit/internal/process"
	"github.com/nelssec/perfaudit/internal/report"
	"github.com/nelssec/perfaudit/internal/revision"
)

const (
	npm         = "npm"
	npx         = "npx"
	du          = "du"
	nodeModules = "node_modules"
)

// Executor runs the external tools the audit is built from.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
	RunCombined(ctx context.Context, name string, args ...string) (string, error)
	Start(ctx context.Context, name string, args ...string) (Server, error)
}

// Server is a background process that can be told to stop.
type Server interface {
	Stop() error
}

type Logger interface {
	Debugf(format string, a ...interface{})
	Infof(format string, a ...interface{})
	Warnf(format string, a ...interface{})
	Errorf(format string, a ...interface{})
}

// Options carries the collaborators of a Runner. Nil fields get the real
// implementations.
type Options struct {
	Executor Executor
	Logger   Logger
	Revision func(dir string) (string, error)
	Clock    func() time.Time
	Ready    func(ctx context.Context) error
}

// Result is what a successful run produced.
type Result struct {
	Report   *report.Report
	Revision string
	Path     string // report file, empty unless writing was enabled
}

// Runner executes the audit pipeline once, strictly in order.
type Runner struct {
	cfg      config.Config
	exec     Executor
	log      Logger
	revision func(dir string) (string, error)
	now      func() time.Time
	ready    func(ctx context.Context) error
}

func NewRunner(cfg config.Config, opts Options) *Runner {
	r := &Runner{
		cfg:      cfg,
		exec:     opts.Executor,
		log:      opts.Logger,
		revision: opts.Revision,
		now:      opts.Clock,
		ready:    opts.Ready,
	}
	if r.log == nil {
		r.log = nopLogger{}
	}
	if r.exec == nil {
		r.exec = processExecutor{process.NewExecutor(cfg.GetProjectDir(), cfg.Verbose, r.log)}
	}
	if r.revision == nil {
		r.revision = revision.Short
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.ready == nil {
		r.ready = r.waitForApp
	}
	return r
}

// Run audits the project and, when configured, writes the report. Any error
// aborts the run; no report is written in that case.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	url, err := r.cfg.URL()
	if err != nil {
		return nil, err
	}
	r.log.Infof("testing %s", url)

	sha, err := r.revision(r.cfg.GetProjectDir())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision: %w", err)
	}
	r.log.Debugf("auditing site at SHA %s...", sha)

	rep := &report.Report{}
	steps := r.cfg.Steps

	if steps.Install {
		r.log.Debugf("cleaning slate...")
		if err := r.cleanSlate(); err != nil {
			return nil, err
		}

		r.log.Debugf("installing production dependencies only...")
		if rep.ProdInstallTimeResult, err = r.install(ctx, "--omit=dev"); err != nil {
			return nil, err
		}
	}

	r.log.Debugf("auditing dependencies...")
	deps, err := r.auditDependencies(ctx)
	if err != nil {
		return nil, err
	}
	rep.Vulnerabilities = deps.Vulnerabilities
	rep.ProdNodeModulesCount = deps.Prod
	r.log.Debugf("vulnerabilities: %d", deps.Vulnerabilities)
	r.log.Debugf("prod node_modules: %d", deps.Prod)

	if steps.Install {
		if steps.FileSize {
			r.log.Debugf("reading size of prod node_modules...")
			if rep.ProdNodeModulesSize, err = r.dirSize(ctx, nodeModules); err != nil {
				return nil, err
			}
			r.log.Debugf("%s", rep.ProdNodeModulesSize)
		}

		r.log.Infof("installing all dependencies...")
		if rep.InstallTimeResult, err = r.install(ctx); err != nil {
			return nil, err
		}
		total := deps.Total
		rep.AllNodeModulesCount = &total
		r.log.Debugf("all node_modules: %d", total)
		r.log.Debugf("install time: %s", rep.InstallTimeResult)

		if steps.FileSize {
			r.log.Debugf("reading size of node_modules...")
			if rep.AllNodeModulesSize, err = r.dirSize(ctx, nodeModules); err != nil {
				return nil, err
			}
			r.log.Debugf("%s", rep.AllNodeModulesSize)
		}
	}

	if err := r.performanceAudit(ctx, url, rep); err != nil {
		return nil, err
	}

	r.log.Debugf("running a cold build...")
	if rep.ElapsedBuildTime, err = r.timedScript(ctx, "build"); err != nil {
		return nil, err
	}
	r.log.Debugf("build took %ss", rep.ElapsedBuildTime)

	if steps.Deploy {
		r.log.Debugf("running a cold deploy...")
		if rep.ElapsedDeployTime, err = r.timedScript(ctx, "deploy"); err != nil {
			return nil, err
		}
		r.log.Debugf("deploy took %ss", rep.ElapsedDeployTime)
	}

	result := &Result{Report: rep, Revision: sha}
	if r.cfg.Output.Write {
		path, err := report.Write(rep, r.cfg.GetOutputDir(), sha, r.cfg.GetFormat())
		if err != nil {
			return nil, err
		}
		result.Path = path
		r.log.Infof("report written to %s", path)
	}
	return result, nil
}

// cleanSlate removes installed dependencies and the previous Lighthouse
// output so nothing from an earlier run is measured.
func (r *Runner) cleanSlate() error {
	for _, p := range []string{nodeModules, r.cfg.GetLighthouseOutput()} {
		if err := os.RemoveAll(r.path(p)); err != nil {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}

func (r *Runner) install(ctx context.Context, args ...string) (string, error) {
	start := r.now()
	out, err := r.exec.RunCombined(ctx, npm, append([]string{"ci"}, args...)...)
	if err != nil {
		return "", err
	}
	r.log.Debugf("npm ci finished after %ss", FormatSeconds(r.now().Sub(start)))
	return ParseInstallDuration(out)
}

func (r *Runner) auditDependencies(ctx context.Context) (DependencyAudit, error) {
	out, err := r.exec.Run(ctx, npm, "audit", "--json=true", "--audit-level=none")
	if err != nil {
		return DependencyAudit{}, err
	}
	return ParseDependencyAudit([]byte(out), r.cfg.Steps.Install)
}

func (r *Runner) dirSize(ctx context.Context, dir string) (string, error) {
	out, err := r.exec.Run(ctx, du, "-sh", dir)
	if err != nil {
		return "", err
	}
	return ParseDirSize(out)
}

// performanceAudit serves the app, runs Lighthouse against it, and copies the
// metrics into rep. The server is stopped on every return path.
func (r *Runner) performanceAudit(ctx context.Context, url string, rep *report.Report) error {
	r.log.Debugf("starting app...")
	server, err := r.exec.Start(ctx, npm, "run", "serve")
	if err != nil {
		return fmt.Errorf("failed to start app: %w", err)
	}
	defer func() {
		r.log.Infof("stopping app...")
		if err := server.Stop(); err != nil {
			r.log.Warnf("failed to stop app: %v", err)
		}
	}()

	r.log.Debugf("waiting for app to start...")
	if err := r.ready(ctx); err != nil {
		return err
	}

	r.log.Debugf("running lighthouse...")
	output := r.cfg.GetLighthouseOutput()
	if _, err := r.exec.Run(ctx, npx, "lighthouse", url, "--output=json", "--output-path", output, "--quiet"); err != nil {
		return err
	}

	data, err := os.ReadFile(r.path(output))
	if err != nil {
		return &ReportExtractionError{Source: lighthouseSource, Field: output, Err: err}
	}

	metrics, diagnostics, err := ExtractLighthouse(data)
	if err != nil {
		return err
	}
	for _, m := range metrics {
		r.log.Debugf("%s: %s", m.Key, m.Value)
	}
	for _, d := range diagnostics {
		r.log.Debugf("%s: %v", d.Key, d.Value)
	}

	rep.LightHouseTestResults = metrics
	rep.DiagnosticResults = diagnostics
	return nil
}

// timedScript clears the build output and times `npm run <script>`.
func (r *Runner) timedScript(ctx context.Context, script string) (string, error) {
	buildDir := r.cfg.GetBuildDir()
	if err := os.RemoveAll(r.path(buildDir)); err != nil {
		return "", fmt.Errorf("failed to remove %s: %w", buildDir, err)
	}

	start := r.now()
	if _, err := r.exec.Run(ctx, npm, "run", script, "--quiet"); err != nil {
		return "", err
	}
	return FormatSeconds(r.now().Sub(start)), nil
}

// waitForApp gives the server the settling delay to come up. With probing
// enabled it returns as soon as the port accepts connections; a server that
// never does is left for Lighthouse to report.
func (r *Runner) waitForApp(ctx context.Context) error {
	delay := r.cfg.SettleDelay()
	if !r.cfg.Steps.ReadyProbe {
		return sleep(ctx, delay)
	}

	err := WaitForAddr(ctx, r.cfg.Addr(), delay, probeInterval)
	if errors.Is(err, ErrNotReady) {
		r.log.Warnf("%v", err)
		return nil
	}
	return err
}

func (r *Runner) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.cfg.GetProjectDir(), p)
}

type processExecutor struct {
	*process.Executor
}

func (p processExecutor) Start(ctx context.Context, name string, args ...string) (Server, error) {
	b, err := p.Executor.Start(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	return b, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
