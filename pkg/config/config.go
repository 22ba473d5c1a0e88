package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/client"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/lifecycle"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/log"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable otool reads
const EnvPrefix = "OTOOL"

// Configuration keys
const (
	KeyDataDir         = "data-dir"
	KeyDBRoot          = "db-root"
	KeyJobsRoot        = "jobs-root"
	KeyProcessedFile   = "processed-file"
	KeyArchesFile      = "arches-file"
	KeyHTTPAddr        = "http-addr"
	KeyGRPCAddr        = "grpc-addr"
	KeyJobURL          = "job-url"
	KeyJenkinsURL      = "jenkins.url"
	KeyJenkinsUser     = "jenkins.user"
	KeyJenkinsToken    = "jenkins.token"
	KeyJenkinsTimeout  = "jenkins.timeout"
	KeyJenkinsJobsFile = "jenkins.jobs-file"
	KeyLogLevel        = "log.level"
	KeyLogJSON         = "log.json"
)

// Jenkins configures the orchestrator client
type Jenkins struct {
	URL      string        `mapstructure:"url"`
	User     string        `mapstructure:"user"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout"`
	JobsFile string        `mapstructure:"jobs-file"`
}

// Log configures logging
type Log struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Config is the process configuration
type Config struct {
	DataDir       string  `mapstructure:"data-dir"`
	DBRoot        string  `mapstructure:"db-root"`
	JobsRoot      string  `mapstructure:"jobs-root"`
	ProcessedFile string  `mapstructure:"processed-file"`
	ArchesFile    string  `mapstructure:"arches-file"`
	HTTPAddr      string  `mapstructure:"http-addr"`
	GRPCAddr      string  `mapstructure:"grpc-addr"`
	JobURL        string  `mapstructure:"job-url"`
	Jenkins       Jenkins `mapstructure:"jenkins"`
	Log           Log     `mapstructure:"log"`
}

// SetDefaults registers every key with its default. Keys must be known to
// viper for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDataDir, "./otool-data")
	v.SetDefault(KeyDBRoot, "")
	v.SetDefault(KeyJobsRoot, "")
	v.SetDefault(KeyProcessedFile, lifecycle.DefaultProcessedFile)
	v.SetDefault(KeyArchesFile, lifecycle.DefaultArchesFile)
	v.SetDefault(KeyHTTPAddr, "127.0.0.1:8080")
	v.SetDefault(KeyGRPCAddr, "127.0.0.1:9090")
	v.SetDefault(KeyJobURL, "")
	v.SetDefault(KeyJenkinsURL, "")
	v.SetDefault(KeyJenkinsUser, "")
	v.SetDefault(KeyJenkinsToken, "")
	v.SetDefault(KeyJenkinsTimeout, client.DefaultTimeout)
	v.SetDefault(KeyJenkinsJobsFile, "")
	v.SetDefault(KeyLogLevel, string(log.InfoLevel))
	v.SetDefault(KeyLogJSON, false)
}

// Load resolves the configuration from, in decreasing precedence, flags
// already bound to v, OTOOL_* environment variables, the YAML file (when
// file is not empty) and defaults
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, types.Errorf(types.ErrInvalidConfiguration, "failed to read %s: %v", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.Errorf(types.ErrInvalidConfiguration, "failed to decode configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would only fail later at use
func (c *Config) Validate() error {
	var result *multierror.Error
	if c.DataDir == "" {
		result = multierror.Append(result, fmt.Errorf("%s is required", KeyDataDir))
	}
	if c.Jenkins.Timeout < 0 {
		result = multierror.Append(result, fmt.Errorf("%s must not be negative", KeyJenkinsTimeout))
	}
	for _, file := range []struct{ key, name string }{
		{KeyProcessedFile, c.ProcessedFile},
		{KeyArchesFile, c.ArchesFile},
	} {
		if file.name == "" || strings.ContainsAny(file.name, `/\`) {
			result = multierror.Append(result, fmt.Errorf("%s must be a plain file name, got %q", file.key, file.name))
		}
	}
	switch log.Level(strings.ToLower(c.Log.Level)) {
	case log.DebugLevel, log.InfoLevel, log.WarnLevel, "warning", log.ErrorLevel:
	default:
		result = multierror.Append(result, fmt.Errorf("%s %q is not one of debug, info, warn, error", KeyLogLevel, c.Log.Level))
	}
	if err := result.ErrorOrNil(); err != nil {
		return types.Errorf(types.ErrInvalidConfiguration, "%v", err)
	}
	return nil
}

// Tracker returns the lifecycle tracker configuration
func (c *Config) Tracker() lifecycle.Config {
	return lifecycle.Config{
		DBRoot:        c.DBRoot,
		JobsRoot:      c.JobsRoot,
		ProcessedFile: c.ProcessedFile,
		ArchesFile:    c.ArchesFile,
	}
}

// Client returns the orchestrator client configuration
func (c *Config) Client() client.Config {
	return client.Config{
		URL:     c.Jenkins.URL,
		User:    c.Jenkins.User,
		Token:   c.Jenkins.Token,
		Timeout: c.Jenkins.Timeout,
	}
}

// Logging returns the logger configuration
func (c *Config) Logging() log.Config {
	return log.Config{Level: log.ParseLevel(c.Log.Level), JSONOutput: c.Log.JSON}
}
