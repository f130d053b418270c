// Command logkit 查看应用在当前配置下会得到的日志计划。
//
//	logkit plan --config-dir ./config --app Orders -o yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
