package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xrbt/directive"
	"github.com/benz9527/xrbt/lib/infra"
	"github.com/benz9527/xrbt/lib/tree"
	"github.com/benz9527/xrbt/observability"
	"github.com/benz9527/xrbt/xlog"
)

const (
	statsName    = "xrbt"
	keyFileField = "keyFile"
)

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func newLogger(lc fx.Lifecycle, cfg *config) xlog.XLogger {
	logger := xlog.NewXLogger(cfg.loggerOptions()...)
	if logger.Level() == zap.DebugLevel.String() {
		logger.Banner(versionBanner{})
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return logger.Sync()
		},
	})
	return logger
}

func newMetricsExporter(lc fx.Lifecycle, cfg *config, s *streams) (observability.ShutdownFunc, error) {
	shutdown, err := observability.NewMetricsExporter(cfg.Metrics, s.err)
	if err != nil {
		return nil, err
	}
	if cfg.Metrics != observability.NoneMetrics {
		if err = observability.InitAppStats(statsName); err != nil {
			return nil, multierr.Append(err, shutdown(context.Background()))
		}
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return shutdown(ctx)
		},
	})
	return shutdown, nil
}

// The exporter is a dependency so that instruments bind to the installed
// meter provider.
func newTree(cfg *config, _ observability.ShutdownFunc) tree.RBTree {
	if cfg.Metrics == observability.NoneMetrics {
		return tree.NewRBTree()
	}
	return tree.NewRBTree(tree.WithRBTreeStats(statsName))
}

func newDirectiveStats(cfg *config, _ observability.ShutdownFunc) *observability.DirectiveStats {
	if cfg.Metrics == observability.NoneMetrics {
		return nil
	}
	return observability.NewDirectiveStats(statsName)
}

func newSession(
	lc fx.Lifecycle,
	cfg *config,
	s *streams,
	t tree.RBTree,
	logger xlog.XLogger,
	stats *observability.DirectiveStats,
) *directive.Session {
	session := directive.NewSession(t,
		directive.WithSessionOutput(s.out),
		directive.WithSessionLogger(logger),
		directive.WithSessionStats(stats),
		directive.WithSessionDumpStyle(cfg.DumpStyle),
	)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return session.Close()
		},
	})
	return session
}

func newFxApp(cfg *config, s *streams, targets ...any) *fx.App {
	return fx.New(
		fx.Supply(cfg, s),
		fx.Provide(
			newLogger,
			newMetricsExporter,
			newTree,
			newDirectiveStats,
			newSession,
		),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Populate(targets...),
	)
}

// The key file is named by the caller, so symlinks and /dev/fd paths from
// process substitution are opened as given.
func openKeyFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "Cannot open input file")
	}
	return f, nil
}

func runAction(cCtx *cli.Context) error {
	if cCtx.NArg() != 1 {
		return cli.Exit("Usage: "+usage, 1)
	}
	cfg, err := configFrom(cCtx)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	s := &streams{
		in:  cCtx.App.Reader,
		out: cCtx.App.Writer,
		err: cCtx.App.ErrWriter,
	}

	var (
		logger  xlog.XLogger
		session *directive.Session
	)
	app := newFxApp(cfg, s, &logger, &session)
	if err = app.Err(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	ctx, stop := signal.NotifyContext(cCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = xlog.ContextWithField(ctx, keyFileField, cfg.KeyFile)
	if err = app.Start(ctx); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
		defer cancel()
		if stopErr := app.Stop(stopCtx); stopErr != nil {
			// Stop errors do not change the exit status of a finished session.
			logger.ErrorContext(ctx, stopErr, "shutdown")
		}
	}()

	f, err := openKeyFile(cfg.KeyFile)
	if err != nil {
		logger.ErrorStack(err, "load keys", zap.String("path", cfg.KeyFile))
		return cli.Exit("Cannot open input file.", 1)
	}
	_, err = session.LoadKeys(f)
	err = multierr.Append(err, f.Close())
	if err != nil {
		logger.ErrorStack(err, "load keys", zap.String("path", cfg.KeyFile))
		return cli.Exit("Cannot read input file.", 1)
	}

	err = session.Run(ctx, s.in)
	if errors.Is(err, context.Canceled) {
		logger.WarnContext(ctx, "directive session interrupted")
		return nil
	} else if err != nil {
		logger.ErrorStack(infra.WrapErrorStackWithMessage(err, "directive session"), "run")
		return cli.Exit(err.Error(), 1)
	}
	return nil
}
