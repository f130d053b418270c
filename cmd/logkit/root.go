package main

import (
	"github.com/spf13/cobra"

	"github.com/ceyewan/logkit/clog"
)

// globalFlags 所有子命令共享的参数
type globalFlags struct {
	logLevel string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "logkit",
		Short:         "Inspect logging plans resolved from layered configuration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "Diagnostic log level (debug|info|warn|error)")

	rootCmd.AddCommand(newPlanCommand(flags))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// diagnostics 命令自身的诊断日志，输出到 stderr
func (f *globalFlags) diagnostics() (clog.Logger, error) {
	return clog.New(&clog.Config{
		Level:  f.logLevel,
		Format: "console",
		Output: "stderr",
	}, clog.WithNamespace("logkit"))
}
