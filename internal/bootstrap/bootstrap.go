package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	monitorinadapter "trafficwatch/internal/modules/monitor/adapter/in"
	monitoroutadapter "trafficwatch/internal/modules/monitor/adapter/out"
	monitordomain "trafficwatch/internal/modules/monitor/domain"
	monitorin "trafficwatch/internal/modules/monitor/port/in"
	monitorout "trafficwatch/internal/modules/monitor/port/out"
	monitorservice "trafficwatch/internal/modules/monitor/service"
	monitorusecase "trafficwatch/internal/modules/monitor/usecase"
	routeinadapter "trafficwatch/internal/modules/route/adapter/in"
	routeoutadapter "trafficwatch/internal/modules/route/adapter/out"
	routedomain "trafficwatch/internal/modules/route/domain"
	routein "trafficwatch/internal/modules/route/port/in"
	routeservice "trafficwatch/internal/modules/route/service"
	routeusecase "trafficwatch/internal/modules/route/usecase"
	"trafficwatch/internal/platform/amap"
	"trafficwatch/internal/platform/clock"
	"trafficwatch/internal/platform/config"
	"trafficwatch/internal/platform/httpjson"
)

const (
	welcomeMessage  = "Welcome to AmapTrafficWatcher API"
	shutdownTimeout = 5 * time.Second
)

type App struct {
	Config     *config.Config
	Logger     hclog.Logger
	Monitor    monitorin.Usecase
	MonitorCLI monitorinadapter.CLIHandler
	Route      routein.Usecase
	RouteCLI   routeinadapter.CLIHandler
	Registry   *prometheus.Registry

	handler http.Handler
	closers []io.Closer
}

func New(cfg *config.Config, logger hclog.Logger) (*App, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clk := clock.SystemClock{Location: loc}
	client := amap.New(cfg.Provider.BaseURL, cfg.Provider.Key, cfg.Provider.Timeout)
	app := &App{Config: cfg, Logger: logger}

	store := newHistoryStore(cfg.Storage, logger.Named("history"))
	index, err := monitoroutadapter.NewSQLiteHistoryIndex(cfg.Storage.IndexDB)
	if err != nil {
		return nil, fmt.Errorf("new history index: %w", err)
	}
	if c, ok := index.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder, err := monitoroutadapter.NewPromRecorder(app.Registry)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	fetcher := monitoroutadapter.NewAmapFetcher(client, amap.DrivingQuery{
		Origin:      cfg.Route.Origin,
		Destination: cfg.Route.Destination,
		Strategy:    cfg.Route.Strategy,
	}, logger.Named("fetcher"))
	visualizer := monitoroutadapter.NewPlotVisualizer(monitoroutadapter.ChartOptions{
		Dir:    cfg.Visualization.Dir,
		Latest: cfg.Visualization.Latest,
		Width:  cfg.Visualization.Width,
		Height: cfg.Visualization.Height,
		DPI:    cfg.Visualization.DPI,
	}, logger.Named("chart"))

	monitorSvc := monitorservice.NewMonitorService(clk, fetcher, store, index, visualizer, recorder, logger.Named("monitor"))
	scheduler := monitorservice.NewScheduler(clk, monitordomain.Boundary{
		Cadence:  cfg.Schedule.Cadence,
		Location: loc,
	}, monitorSvc, logger.Named("scheduler"))
	app.Monitor = monitorusecase.NewInteractor(monitorSvc, scheduler, clk)
	app.MonitorCLI = monitorinadapter.NewCLIHandler(app.Monitor)

	routeSvc := routeservice.NewRouteService(clk, routeoutadapter.NewAmapProvider(client), routedomain.Query{
		Origin:      cfg.Route.Origin,
		Destination: cfg.Route.Destination,
		Strategy:    cfg.Route.Strategy,
	}, logger.Named("route"))
	app.Route = routeusecase.NewInteractor(routeSvc)
	app.RouteCLI = routeinadapter.NewCLIHandler(app.Route)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		httpjson.Write(w, http.StatusOK, map[string]string{"message": welcomeMessage})
	})
	monitorinadapter.NewHTTPHandler(app.Monitor, logger.Named("http")).Register(mux)
	routeinadapter.NewHTTPHandler(app.Route, logger.Named("http")).Register(mux)
	mux.Handle("GET /metrics", app.MetricsHandler())
	app.handler = httpjson.CORS(mux)

	return app, nil
}

func newHistoryStore(cfg config.StorageConfig, logger hclog.Logger) monitorout.HistoryStore {
	if cfg.Format == config.FormatJSONL {
		return monitoroutadapter.NewJSONLHistoryStore(cfg.HistoryFile, logger)
	}
	return monitoroutadapter.NewJSONHistoryStore(cfg.HistoryFile, logger)
}

// Handler serves the REST API, the welcome route and /metrics.
func (a *App) Handler() http.Handler { return a.handler }

func (a *App) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})
}

// NewGRPCServer returns a server with the history service registered.
func (a *App) NewGRPCServer() *grpc.Server {
	srv := grpc.NewServer()
	monitorinadapter.RegisterHistoryServiceServer(srv, monitorinadapter.NewGRPCServer(a.Monitor))
	return srv
}

type ServeOptions struct {
	HTTPAddr string
	GRPCAddr string
	// Schedule also runs the sampling loop inside the server process.
	Schedule bool
}

// Serve runs the HTTP and gRPC listeners, and the scheduler when requested,
// until ctx is cancelled or one of them fails.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	var grpcLn net.Listener
	if opts.GRPCAddr != "" {
		ln, err := net.Listen("tcp", opts.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
		grpcLn = ln
	}

	g, gctx := errgroup.WithContext(ctx)

	if opts.HTTPAddr != "" {
		srv := &http.Server{
			Addr:              opts.HTTPAddr,
			Handler:           a.handler,
			ReadHeaderTimeout: httpjson.ReadHeaderTimeout,
		}
		g.Go(func() error {
			a.Logger.Info("http api listening", "addr", opts.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if grpcLn != nil {
		srv := a.NewGRPCServer()
		g.Go(func() error {
			a.Logger.Info("grpc history service listening", "addr", grpcLn.Addr().String())
			if err := srv.Serve(grpcLn); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			srv.GracefulStop()
			return nil
		})
	}

	if opts.Schedule {
		g.Go(func() error {
			err := a.Monitor.Run(gctx)
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}

// ServeMetrics exposes only /metrics until ctx is cancelled.
func (a *App) ServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", a.MetricsHandler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: httpjson.ReadHeaderTimeout}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	a.Logger.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	var errs []error
	for _, c := range slices.Backward(a.closers) {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
