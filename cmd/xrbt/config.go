package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/carlmjohnson/versioninfo"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/benz9527/xrbt/directive"
	"github.com/benz9527/xrbt/observability"
	"github.com/benz9527/xrbt/xlog"
)

var logEncoders = []string{"json", "text"}

var appFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "log-level",
		Usage:   "debug, info, warn or error",
		Value:   "warn",
		EnvVars: []string{"XRBT_LOG_LEVEL", "XLOG_LVL"},
	},
	&cli.StringFlag{
		Name:    "log-encoder",
		Usage:   "stderr log format: " + strings.Join(logEncoders, " or "),
		Value:   "json",
		EnvVars: []string{"XRBT_LOG_ENCODER"},
	},
	&cli.StringFlag{
		Name:    "metrics",
		Usage:   "metrics written to stderr on exit: " + strings.Join(observability.MetricsExporterTypes(), ", "),
		Value:   string(observability.NoneMetrics),
		EnvVars: []string{"XRBT_METRICS"},
	},
	&cli.StringFlag{
		Name:    "dump-style",
		Usage:   "print-rbt rendering: " + strings.Join(directive.DumpStyles(), ", "),
		Value:   string(directive.DumpDots),
		EnvVars: []string{"XRBT_DUMP_STYLE"},
	},
}

type config struct {
	KeyFile    string
	LogLevel   string
	LogEncoder string
	Metrics    observability.MetricsExporterType
	DumpStyle  directive.DumpStyle
}

func configFrom(cCtx *cli.Context) (*config, error) {
	cfg := &config{
		KeyFile:    cCtx.Args().First(),
		LogLevel:   cCtx.String("log-level"),
		LogEncoder: strings.ToLower(cCtx.String("log-encoder")),
		Metrics:    observability.MetricsExporterType(strings.ToLower(cCtx.String("metrics"))),
	}
	if !lo.Contains(logEncoders, cfg.LogEncoder) {
		return nil, fmt.Errorf("unknown log encoder %q", cfg.LogEncoder)
	}
	if !lo.Contains(observability.MetricsExporterTypes(), string(cfg.Metrics)) {
		return nil, fmt.Errorf("unknown metrics exporter %q", cfg.Metrics)
	}
	style, err := directive.ParseDumpStyle(strings.ToLower(cCtx.String("dump-style")))
	if err != nil {
		return nil, err
	}
	cfg.DumpStyle = style
	return cfg, nil
}

func (cfg *config) loggerOptions() []xlog.XLoggerOption {
	encoder := xlog.JSON
	if cfg.LogEncoder == "text" {
		encoder = xlog.PlainText
	}
	return []xlog.XLoggerOption{
		xlog.WithXLoggerLevel(xlog.LogLevelOf(cfg.LogLevel)),
		xlog.WithXLoggerEncoder(encoder),
		xlog.WithXLoggerWriter(xlog.StdErr),
		xlog.WithXLoggerContextFieldExtract(keyFileField),
	}
}

type versionBanner struct{}

func (versionBanner) JSON() string {
	b, _ := json.Marshal(map[string]string{
		"app":     "xrbt",
		"version": versioninfo.Short(),
	})
	return string(b)
}

func (versionBanner) PlainText() string {
	return "xrbt " + versioninfo.Short()
}
