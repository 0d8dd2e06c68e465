package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/telekom/nestctl/pkg/metrics"
	"github.com/telekom/nestctl/pkg/nestctl/config"
	"github.com/telekom/nestctl/pkg/nestctl/output"
	"github.com/telekom/nestctl/pkg/system"
)

type Config struct {
	ConfigPath     string
	CredentialsDir string
	OutputWriter   io.Writer
	ErrorWriter    io.Writer
	// Browser opens the consent URL during login. nil uses the platform opener.
	Browser func(string) error
}

type runtimeState struct {
	configPath           string
	credentialsDir       string
	cfg                  *config.Config
	outputFormat         string
	tokenStorageOverride string
	apiEndpointOverride  string
	metricsTextfile      string
	verbose              bool
	noBrowser            bool
	writer               io.Writer
	errWriter            io.Writer
	browser              func(string) error
	log                  *zap.SugaredLogger
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		ConfigPath:     config.DefaultConfigPath(),
		CredentialsDir: config.DefaultConfigDir(),
		OutputWriter:   os.Stdout,
		ErrorWriter:    os.Stderr,
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{
		configPath:     cfg.ConfigPath,
		credentialsDir: cfg.CredentialsDir,
		writer:         cfg.OutputWriter,
		errWriter:      cfg.ErrorWriter,
		browser:        cfg.Browser,
		log:            zap.NewNop().Sugar(),
	}

	root := &cobra.Command{
		Use:           "nestctl",
		Short:         "Control Nest thermostats through the Smart Device Management API",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.errWriter == nil {
				rt.errWriter = os.Stderr
			}
			if rt.configPath == "" {
				rt.configPath = config.DefaultConfigPath()
			}
			if rt.credentialsDir == "" {
				rt.credentialsDir = config.DefaultConfigDir()
			}
			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			if rt.outputFormat == "" {
				rt.outputFormat = env.Output
			}
			if rt.tokenStorageOverride == "" {
				rt.tokenStorageOverride = env.TokenStorage
			}
			if rt.apiEndpointOverride == "" {
				rt.apiEndpointOverride = env.APIEndpoint
			}
			if !rt.verbose {
				rt.verbose = env.Verbose
			}
			if !rt.noBrowser {
				rt.noBrowser = env.NoBrowser
			}
			rt.log = system.NewLogger(rt.errWriter, rt.verbose)

			if cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			cfg, err := config.Load(rt.configPath)
			if err != nil {
				return err
			}
			rt.cfg = cfg
			return output.Format(rt.OutputFormat()).Validate()
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file")
	root.PersistentFlags().StringVarP(&rt.outputFormat, "output", "o", "", "Output format: table, wide, json, yaml, go-template=...")
	root.PersistentFlags().StringVar(&rt.tokenStorageOverride, "token-storage", "", "Token storage backend: file or keychain")
	root.PersistentFlags().StringVar(&rt.apiEndpointOverride, "api-endpoint", "", "Smart Device Management API endpoint override")
	root.PersistentFlags().StringVar(&rt.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file after the command")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable verbose output with request IDs on stderr")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewAuthCommand(),
		NewDevicesCommand(),
		NewSetCommand(),
		NewCompletionCommand(),
		NewVersionCommand(),
	)

	return root
}

// Execute runs the command tree with args under ctx and flushes the metrics
// textfile afterwards, whether or not the command succeeded.
func Execute(ctx context.Context, cfg Config, args []string) error {
	root := NewRootCommand(cfg)
	rt, err := getRuntime(root)
	if err != nil {
		return err
	}
	root.SetArgs(args)
	runErr := root.ExecuteContext(context.WithValue(ctx, runtimeKey{}, rt))
	if rt.metricsTextfile != "" {
		if err := metrics.WriteTextfile(rt.metricsTextfile); err != nil {
			return errors.Join(runErr, fmt.Errorf("failed to write metrics textfile: %w", err))
		}
	}
	return runErr
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) OutputFormat() string {
	if rt.outputFormat != "" {
		return rt.outputFormat
	}
	if rt.cfg != nil && rt.cfg.Settings.OutputFormat != "" {
		return rt.cfg.Settings.OutputFormat
	}
	return string(output.FormatTable)
}

func (rt *runtimeState) TokenStorage() string {
	if rt.tokenStorageOverride != "" {
		return strings.ToLower(rt.tokenStorageOverride)
	}
	if rt.cfg != nil && rt.cfg.Settings.TokenStorage != "" {
		return strings.ToLower(rt.cfg.Settings.TokenStorage)
	}
	return config.TokenStorageFile
}

func (rt *runtimeState) APIEndpoint() string {
	if rt.apiEndpointOverride != "" {
		return rt.apiEndpointOverride
	}
	return rt.settings().APIEndpointOrDefault()
}

func (rt *runtimeState) settings() config.Settings {
	if rt.cfg == nil {
		return config.DefaultConfig().Settings
	}
	return rt.cfg.Settings
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}
