package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ceyewan/logkit/config"
	"github.com/ceyewan/logkit/internal/planview"
	"github.com/ceyewan/logkit/logplan"
)

// planFlags plan 命令的参数，未显式指定的参数保持默认值
type planFlags struct {
	configName string
	configDirs []string
	envPrefix  string
	output     string

	app       string
	minLevel  string
	file      string
	interval  string
	noConsole bool
	noFile    bool
	overrides []string
}

func newPlanCommand(global *globalFlags) *cobra.Command {
	flags := &planFlags{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Resolve and print the logging plan",
		Long: "Load configuration files, .env files and environment variables the same way an application does,\n" +
			"resolve the logging plan and print it. Configuration problems are reported as warnings.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := global.diagnostics()
			if err != nil {
				return err
			}
			defer logger.Close()

			opts := []config.Option{
				config.WithConfigName(flags.configName),
				config.WithEnvPrefix(flags.envPrefix),
				config.WithLogger(logger),
			}
			if len(flags.configDirs) > 0 {
				opts = append(opts, config.WithConfigPaths(flags.configDirs...))
			}
			loader, err := config.New(opts...)
			if err != nil {
				return err
			}
			if err := loader.Load(cmd.Context()); err != nil {
				return err
			}

			plan := logplan.Resolve(flags.configure(cmd), loader)
			if err := planview.Render(cmd.OutOrStdout(), plan, flags.output); err != nil {
				return err
			}

			for _, problem := range unwrapAll(loader.Validate()) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", problem)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configName, "config-name", "config", "Configuration file name without extension")
	f.StringSliceVar(&flags.configDirs, "config-dir", nil, "Directories searched for the configuration file (default . and ./config)")
	f.StringVar(&flags.envPrefix, "env-prefix", "", "Only read PREFIX__ environment variables")
	f.StringVarP(&flags.output, "output", "o", planview.FormatTable, "Output format (table|yaml|json)")

	f.StringVar(&flags.app, "app", "", "Application name added to every event")
	f.StringVar(&flags.minLevel, "min-level", "", "Minimum level (Verbose|Debug|Information|Warning|Error|Fatal)")
	f.StringVar(&flags.file, "file", "", "Log file path template")
	f.StringVar(&flags.interval, "interval", "", "Rolling interval (Infinite|Year|Month|Day|Hour|Minute)")
	f.BoolVar(&flags.noConsole, "no-console", false, "Disable the console sink")
	f.BoolVar(&flags.noFile, "no-file", false, "Disable the file sink")
	f.StringSliceVar(&flags.overrides, "override", nil, "Namespaces forced to Warning (replaces the defaults)")

	return cmd
}

// configure 只应用命令行中显式给出的参数
func (p *planFlags) configure(cmd *cobra.Command) func(*logplan.Options) {
	changed := cmd.Flags().Changed
	return func(o *logplan.Options) {
		if changed("app") {
			o.ApplicationName = p.app
		}
		if changed("min-level") {
			o.MinimumLevel = p.minLevel
		}
		if changed("file") {
			o.LogFilePath = p.file
		}
		if changed("interval") {
			o.RollingInterval = logplan.ParseRollingInterval(p.interval)
		}
		if p.noConsole {
			o.EnableConsole = false
		}
		if p.noFile {
			o.EnableFile = false
		}
		if changed("override") {
			o.OverrideToWarning = p.overrides
		}
	}
}

// unwrapAll 展开 Combine 合并的错误
func unwrapAll(err error) []error {
	if err == nil {
		return nil
	}
	var multi interface{ Unwrap() []error }
	if errors.As(err, &multi) {
		return multi.Unwrap()
	}
	return []error{err}
}
