package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/client"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/config"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/lifecycle"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/log"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/manager"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/storage"
	"github.com/sefroberg/jenkins-scm-koji-plugin/pkg/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "otool",
	Short: "otool - JDK build and test job matrix service",
	Long: `otool expands declarative JDK project descriptions into the set of
orchestrator jobs that should exist, reconciles them against the jobs the
orchestrator actually has, and manages which builds each job has processed.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log.Init(cfg.Logging())
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"otool version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML configuration file")
	flags.String(config.KeyDataDir, "", "Directory holding the configuration database")
	flags.String(config.KeyDBRoot, "", "Root of the build database holding arches expectations")
	flags.String(config.KeyJobsRoot, "", "Root of the orchestrator jobs holding processed ledgers")
	flags.String(config.KeyJobURL, "", "Prefix of job links in job listings")
	flags.String("jenkins-url", "", "Jenkins base URL")
	flags.String("jobs-file", "", "File listing orchestrator jobs, one per line, instead of Jenkins")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.Bool("log-json", false, "Log in JSON format")

	for key, flag := range map[string]string{
		config.KeyDataDir:         config.KeyDataDir,
		config.KeyDBRoot:          config.KeyDBRoot,
		config.KeyJobsRoot:        config.KeyJobsRoot,
		config.KeyJobURL:          config.KeyJobURL,
		config.KeyJenkinsURL:      "jenkins-url",
		config.KeyJenkinsJobsFile: "jobs-file",
		config.KeyLogLevel:        "log-level",
		config.KeyLogJSON:         "log-json",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(redeployCmd)
	rootCmd.AddCommand(archesCmd)
	rootCmd.AddCommand(configCmd)
}

var loaded *config.Config

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if loaded != nil {
		return loaded, nil
	}
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, file)
	if err != nil {
		return nil, err
	}
	loaded = cfg
	return cfg, nil
}

// app bundles what every command needs
type app struct {
	cfg     *config.Config
	store   *storage.BoltStore
	lister  client.JobLister
	manager *manager.Manager
}

func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	var lister client.JobLister
	lister, err = client.NewLister(cfg.Client(), cfg.Jenkins.JobsFile, cfg.JobsRoot)
	if err != nil {
		log.Logger.Debug().Err(err).Msg("Orchestrator listings unavailable")
		lister = unavailableLister{err: err}
	}
	mgr := manager.NewManager(manager.Config{
		Store:   store,
		Lister:  lister,
		Tracker: lifecycle.NewTracker(cfg.Tracker()),
		DataDir: cfg.DataDir,
		JobURL:  cfg.JobURL,
	})
	return &app{cfg: cfg, store: store, lister: lister, manager: mgr}, nil
}

// unavailableLister fails every listing with the reason no source was configured
type unavailableLister struct {
	err error
}

func (l unavailableLister) ListJobNames(ctx context.Context) ([]string, error) {
	return nil, types.Errorf(types.ErrInvalidConfiguration, "%v", l.err)
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		log.Logger.Warn().Err(err).Msg("Failed to close store")
	}
}
