package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/cofrn/cofrn-monitor/internal/api/grpc/health"
	"github.com/cofrn/cofrn-monitor/internal/api/rest"
	"github.com/cofrn/cofrn-monitor/internal/config"
	"github.com/cofrn/cofrn-monitor/internal/logger"
	"github.com/cofrn/cofrn-monitor/internal/service/alarms"
	"github.com/cofrn/cofrn-monitor/internal/service/common"
	"github.com/cofrn/cofrn-monitor/internal/service/monitor"
)

// Options controls the cofrn-api process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// HTTPListen overrides the HTTP listen address.
	HTTPListen string
	// GRPCListen overrides the gRPC listen address.
	GRPCListen string
}

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// ErrNoListener indicates that neither HTTP nor gRPC is configured.
var ErrNoListener = errors.New("no listen address configured")

// App holds the wired components of the API process.
type App struct {
	Config   *config.Config
	Handler  http.Handler
	Reporter *health.Reporter
	Monitor  *monitor.Service
	Alarms   *alarms.Service

	closeFn func() error
}

// Run starts the listeners and tickers and blocks until ctx is canceled or a
// listener fails.
func Run(ctx context.Context, opts *Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if !logger.Configure(cfg.Log.Level, logger.Options{Format: cfg.Log.Format, File: cfg.Log.File}) {
		logger.WarnKV(ctx, "Unknown log level, keeping default", "level", cfg.Log.Level)
	}

	// Name the logger after Configure so ctx carries the configured sinks.
	ctx = logger.WithName(ctx, "cofrn-api")

	// Command line arguments override config.
	if opts.HTTPListen != "" {
		cfg.HTTP.Listen = opts.HTTPListen
	}

	if opts.GRPCListen != "" {
		cfg.GRPC.Listen = opts.GRPCListen
	}

	if cfg.HTTP.Listen == "" && cfg.GRPC.Listen == "" {
		return ErrNoListener
	}

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	defer func() {
		_ = app.Close()
	}()

	lc := net.ListenConfig{}

	var httpLis, grpcLis net.Listener

	if cfg.HTTP.Listen != "" {
		if httpLis, err = lc.Listen(ctx, "tcp", cfg.HTTP.Listen); err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.HTTP.Listen, err)
		}
	}

	if cfg.GRPC.Listen != "" {
		if grpcLis, err = lc.Listen(ctx, "tcp", cfg.GRPC.Listen); err != nil {
			if httpLis != nil {
				_ = httpLis.Close()
			}

			return fmt.Errorf("listen on %s: %w", cfg.GRPC.Listen, err)
		}
	}

	return app.Serve(ctx, httpLis, grpcLis)
}

// NewApp wires stores, services and transports from configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	awsCfg, err := common.LoadAWS(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}

	dispatcher, err := common.Alerts(ctx, cfg.Alerts, awsCfg)
	if err != nil {
		return nil, err
	}

	cache, closeFn, err := common.AlarmCache(ctx, cfg.Alarms, awsCfg)
	if err != nil {
		return nil, err
	}

	heartbeats := common.HeartbeatRepository(cfg.Heartbeat, awsCfg)
	reporter := health.NewReporter()

	alarmSvc := alarms.NewService(cache, dispatcher, common.TagResolver(cfg.Alarms, awsCfg), cfg.Alarms)
	monitorSvc := monitor.NewService(heartbeats, dispatcher, cfg.Heartbeat, monitor.WithStatusReporter(reporter))

	var host any
	if actor, err := common.DetectActor(); err == nil {
		host = actor
	}

	return &App{
		Config:   cfg,
		Handler:  rest.NewRouter(rest.NewHandler(heartbeats, alarmSvc), host),
		Reporter: reporter,
		Monitor:  monitorSvc,
		Alarms:   alarmSvc,
		closeFn:  closeFn,
	}, nil
}

// Close releases store connections.
func (a *App) Close() error {
	if a.closeFn == nil {
		return nil
	}

	return a.closeFn()
}

// Serve runs the HTTP server on httpLis and the gRPC health server on grpcLis
// (either may be nil) together with the monitor and sweep tickers. It returns
// after ctx is canceled and every server stopped.
func (a *App) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	if httpLis != nil {
		srv := &http.Server{
			Handler:           a.Handler,
			ReadHeaderTimeout: shutdownTimeout,
		}

		g.Go(func() error {
			logger.InfoKV(gctx, "HTTP server listening", "listen_address", httpLis.Addr().String())

			if err := srv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve HTTP: %w", err)
			}

			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			logger.Info(gctx, "Shutting down HTTP server")

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
			defer cancel()

			return srv.Shutdown(shutdownCtx)
		})
	}

	if grpcLis != nil {
		grpcServer := grpc.NewServer()
		a.Reporter.Register(grpcServer)

		g.Go(func() error {
			logger.InfoKV(gctx, "GRPC health server listening", "listen_address", grpcLis.Addr().String())

			if err := grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("serve gRPC: %w", err)
			}

			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			logger.Info(gctx, "Shutting down gRPC server")
			a.Reporter.Shutdown()
			grpcServer.GracefulStop()

			return nil
		})
	}

	g.Go(func() error {
		return a.Monitor.Loop(gctx, a.Config.Heartbeat.Interval)
	})

	g.Go(func() error {
		return a.Alarms.Loop(gctx, a.Config.Alarms.SweepInterval)
	})

	err := g.Wait()

	logger.Info(ctx, "Servers stopped")

	return err
}
