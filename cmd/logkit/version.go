package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// version 发布时通过 -ldflags "-X main.version=..." 注入
var version = "dev"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the logkit version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "logkit %s (%s)\n", version, runtime.Version())
			return err
		},
	}
}
