// Package cli parses command-line arguments into an app configuration
// and a request URI.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/actionhub/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments on top of the environment
// defaults. It returns the validated config, the request URI to
// dispatch, and a boolean indicating a clean early exit (help or no
// request).
func Parse(args []string, output io.Writer) (*app.Config, string, bool, error) {
	flagSet := flag.NewFlagSet("actionhub", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
actionhub - a capability-checked action registry and dispatcher.

Usage:
  actionhub [options] REQUEST

Arguments:
  REQUEST
    A request URI of the form "key?field=value&...", e.g. "echo?x=5".

Options:
`)
		flagSet.PrintDefaults()
	}

	envCfg, err := app.ConfigFromEnv()
	if err != nil {
		return nil, "", false, &ExitError{Code: 2, Message: err.Error()}
	}

	manifestsFlag := flagSet.String("manifests", defaulted(envCfg.ManifestPath, "manifests"), "Path to a manifest file or directory of .hcl manifests.")
	logFormatFlag := flagSet.String("log-format", envCfg.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", envCfg.LogLevel, "Logging level. Options: 'debug', 'info', 'warn', 'error'.")
	modeFlag := flagSet.String("mode", envCfg.DispatchMode, "Async resolution mode. Options: 'blocking' or 'nonblocking'.")
	rateFlag := flagSet.Float64("rate-limit", envCfg.RateLimit, "Maximum dispatches per second. 0 disables the limiter.")
	metricsFlag := flagSet.Bool("metrics", envCfg.MetricsEnabled, "Collect Prometheus dispatch metrics.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, "", true, nil
		}
		return nil, "", false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, "", true, nil
	}
	uri := flagSet.Arg(0)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, "", false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, "", false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		ManifestPath:   *manifestsFlag,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
		DispatchMode:   strings.ToLower(*modeFlag),
		RateLimit:      *rateFlag,
		RateBurst:      envCfg.RateBurst,
		MetricsEnabled: *metricsFlag,
	})
	if err != nil {
		return nil, "", false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, uri, false, nil
}

func defaulted(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
