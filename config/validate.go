package config

import (
	"net/url"
	"strings"

	"github.com/ceyewan/logkit/xerrors"
)

// LoggingSectionKey 日志引擎读取的覆盖配置节
//
//	Logging:
//	  MinimumLevel: Debug
//	  Override:
//	    Quartz: Error
const LoggingSectionKey = "logging"

var knownLevels = map[string]bool{
	"verbose":     true,
	"debug":       true,
	"information": true,
	"warning":     true,
	"error":       true,
	"fatal":       true,
}

func isKnownLevel(s string) bool {
	return knownLevels[strings.ToLower(strings.TrimSpace(s))]
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return xerrors.Wrapf(ErrValidationFailed, "betterstack.endpoint: %v", err)
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return xerrors.Wrapf(ErrValidationFailed, "betterstack.endpoint: %q is not an http(s) URL", endpoint)
	}
	return nil
}
