package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	coursepack "github.com/goliatone/go-coursepack"
	"github.com/goliatone/go-coursepack/content"
	"github.com/goliatone/go-coursepack/internal/markdown"
)

const envPrefix = "COURSEPACK"

// errContentInvalid marks a run that completed but found content errors.
// The report has already been printed, so main only sets the exit code.
var errContentInvalid = errors.New("content has errors")

const (
	keyVault        = "vault"
	keyTiers        = "tiers"
	keyConfig       = "config"
	keyConcurrency  = "concurrency"
	keyTypoDistance = "typo-distance"
	keyLogProvider  = "log-provider"
	keyLogLevel     = "log-level"
	keyLogFormat    = "log-format"
)

// app carries the resolved configuration shared by every subcommand.
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "coursepack",
		Short:         "Compile and validate a course content vault",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfigFile()
		},
	}

	defaults := coursepack.DefaultConfig()
	flags := root.PersistentFlags()
	flags.String(keyVault, ".", "path to the content vault root")
	flags.String(keyTiers, "", "YAML file assigning production, preview or ignored tiers to vault paths")
	flags.String(keyConfig, "", "optional config file (yaml, json or toml)")
	flags.Int(keyConcurrency, defaults.Compile.Concurrency, "modules flattened in parallel during validate")
	flags.Int(keyTypoDistance, defaults.Validation.TypoDistance, "maximum edit distance reported as a typo")
	flags.String(keyLogProvider, defaults.Logging.Provider, "log provider: console or gologger")
	flags.String(keyLogLevel, "warn", "log level")
	flags.String(keyLogFormat, "", "gologger format: json, console or pretty")

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlags(flags)

	root.AddCommand(
		a.flattenCommand(),
		a.validateCommand(),
		a.courseCommand(),
	)
	return root
}

func (a *app) loadConfigFile() error {
	file := strings.TrimSpace(a.v.GetString(keyConfig))
	if file == "" {
		return nil
	}
	a.v.SetConfigFile(file)
	if err := a.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", file, err)
	}
	return nil
}

func (a *app) config() coursepack.Config {
	cfg := coursepack.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Compile.Concurrency = a.v.GetInt(keyConcurrency)
	cfg.Validation.TypoDistance = a.v.GetInt(keyTypoDistance)
	cfg.Logging.Provider = a.v.GetString(keyLogProvider)
	cfg.Logging.Level = a.v.GetString(keyLogLevel)
	cfg.Logging.Format = a.v.GetString(keyLogFormat)
	return cfg
}

// workspace is everything a subcommand needs to run against a vault.
type workspace struct {
	module *coursepack.Module
	files  content.FileMap
	tiers  content.TierMap
	root   string
}

func (a *app) open(ctx context.Context) (*workspace, error) {
	module, err := coursepack.New(a.config())
	if err != nil {
		return nil, fmt.Errorf("configure compiler: %w", err)
	}

	root := a.v.GetString(keyVault)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open vault: %s is not a directory", root)
	}

	loader := markdown.NewLoader(os.DirFS(root), markdown.LoaderConfig{SkipHidden: true})
	files, err := loader.LoadVault(ctx, ".")
	if err != nil {
		return nil, fmt.Errorf("load vault: %w", err)
	}

	tiers, err := loadTiers(a.v.GetString(keyTiers))
	if err != nil {
		return nil, err
	}

	module.Logger().Debug("vault.loaded", "vault_root", root, "files", len(files), "tiers", len(tiers))
	return &workspace{module: module, files: files, tiers: tiers, root: root}, nil
}
