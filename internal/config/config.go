package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Target  TargetConfig `mapstructure:"target"`
	Steps   StepsConfig  `mapstructure:"steps"`
	Paths   PathsConfig  `mapstructure:"paths"`
	Output  OutputConfig `mapstructure:"output"`
	Verbose bool         `mapstructure:"verbose"`
}

type TargetConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Path string `mapstructure:"path"`
}

type StepsConfig struct {
	Install    bool `mapstructure:"install"`
	FileSize   bool `mapstructure:"filesize"`
	Deploy     bool `mapstructure:"deploy"`
	WaitMillis int  `mapstructure:"wait_ms"`
	ReadyProbe bool `mapstructure:"ready_probe"`
}

type PathsConfig struct {
	ProjectDir       string `mapstructure:"project_dir"`
	LighthouseOutput string `mapstructure:"lighthouse_output"`
	BuildDir         string `mapstructure:"build_dir"`
}

type OutputConfig struct {
	Write  bool   `mapstructure:"write"`
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
}

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// envBindings maps viper keys to the environment names the audit has always
// been driven by.
var envBindings = map[string]string{
	"target.host":             "LH_HOST",
	"target.port":             "LH_PORT",
	"target.path":             "LH_PATH",
	"verbose":                 "VERBOSE",
	"steps.install":           "INSTALL",
	"steps.filesize":          "FILESIZE",
	"steps.deploy":            "DEPLOY",
	"steps.wait_ms":           "MS_WAIT_BEFORE_LIGHTHOUSE",
	"steps.ready_probe":       "READY_PROBE",
	"paths.project_dir":       "PROJECT_DIR",
	"paths.lighthouse_output": "LH_REPORT_PATH",
	"paths.build_dir":         "BUILD_DIR",
	"output.write":            "WRITE",
	"output.dir":              "OUTPUT_DIR",
	"output.format":           "REPORT_FORMAT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("target.path", "/")
	v.SetDefault("steps.wait_ms", 10000)
	v.SetDefault("steps.ready_probe", true)
	v.SetDefault("paths.project_dir", ".")
	v.SetDefault("paths.lighthouse_output", "report.json")
	v.SetDefault("paths.build_dir", ".next")
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.format", FormatJSON)
}

// Load resolves the configuration from v. Values come, in increasing order of
// precedence, from defaults, a .env file in the project directory, the
// optional YAML config file, the environment, and flags bound to v.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", cfgFile, err)
		}
	}

	if err := mergeDotEnv(v); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

// mergeDotEnv reads KEY=value pairs from <project_dir>/.env and installs them
// as defaults under the same names the process environment uses.
func mergeDotEnv(v *viper.Viper) error {
	path := filepath.Join(v.GetString("paths.project_dir"), ".env")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("checking %s: %w", path, err)
	}

	dotenv := viper.New()
	dotenv.SetConfigFile(path)
	dotenv.SetConfigType("env")
	if err := dotenv.ReadInConfig(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	for key, env := range envBindings {
		name := strings.ToLower(env)
		if dotenv.IsSet(name) {
			v.SetDefault(key, dotenv.Get(name))
		}
	}
	return nil
}

// Validate fails fast on settings that would otherwise surface later as an
// unreachable or malformed audit URL.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Target.Host) == "" {
		return fmt.Errorf("target host required. Set via --host, LH_HOST, or config file")
	}
	if strings.TrimSpace(c.Target.Port) == "" {
		return fmt.Errorf("target port required. Set via --port, LH_PORT, or config file")
	}
	port, err := strconv.Atoi(strings.TrimPrefix(c.Target.Port, ":"))
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid target port %q", c.Target.Port)
	}
	if _, err := c.URL(); err != nil {
		return err
	}
	if c.Steps.WaitMillis < 0 {
		return fmt.Errorf("settling delay must not be negative, got %dms", c.Steps.WaitMillis)
	}
	switch c.GetFormat() {
	case FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unknown report format %q (want json or yaml)", c.Output.Format)
	}
	return nil
}

// URL composes the audit target. Hosts may be written with or without a
// scheme, and with the trailing colon older .env files carry
// (LH_HOST=http://localhost:).
func (c Config) URL() (string, error) {
	host := strings.TrimSuffix(strings.TrimSpace(c.Target.Host), ":")
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("invalid target host %q: %w", c.Target.Host, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid target host %q", c.Target.Host)
	}

	path := c.Target.Path
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u.Host = net.JoinHostPort(u.Hostname(), strings.TrimPrefix(c.Target.Port, ":"))
	u.Path = ""
	return u.String() + path, nil
}

// Addr is the host:port the application under test listens on.
func (c Config) Addr() string {
	u, err := c.URL()
	if err != nil {
		return ""
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return ""
	}
	return parsed.Host
}

func (c Config) SettleDelay() time.Duration {
	return time.Duration(c.Steps.WaitMillis) * time.Millisecond
}

func (c Config) GetProjectDir() string {
	if c.Paths.ProjectDir != "" {
		return c.Paths.ProjectDir
	}
	return "."
}

func (c Config) GetLighthouseOutput() string {
	if c.Paths.LighthouseOutput != "" {
		return c.Paths.LighthouseOutput
	}
	return "report.json"
}

func (c Config) GetBuildDir() string {
	if c.Paths.BuildDir != "" {
		return c.Paths.BuildDir
	}
	return ".next"
}

func (c Config) GetOutputDir() string {
	if c.Output.Dir != "" {
		return c.Output.Dir
	}
	return "."
}

func (c Config) GetFormat() string {
	if c.Output.Format != "" {
		return strings.ToLower(c.Output.Format)
	}
	return FormatJSON
}
