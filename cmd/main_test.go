package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/possessions/internal/adapters/repository"
	app "github.com/okian/possessions/internal/app"
	"github.com/okian/possessions/internal/config"
	"github.com/okian/possessions/internal/domain/lineup"
	"github.com/okian/possessions/pkg/logger"
	"github.com/okian/possessions/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func noMinutes() lineup.MinutesSource {
	return lineup.MinutesSourceFunc(func(context.Context, string, time.Duration, time.Duration) ([]lineup.PlayerMinutes, error) {
		return nil, nil
	})
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("PBP_ADDR", ":8080")
			_ = os.Setenv("PBP_QUEUE_SIZE", "1000")
			_ = os.Setenv("PBP_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("PBP_ADDR")
				_ = os.Unsetenv("PBP_QUEUE_SIZE")
				_ = os.Unsetenv("PBP_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the memory store is configured", func() {
			cfg := config.New()
			store, closeStore, err := newStore(context.Background(), cfg)
			defer closeStore()

			convey.Convey("Then an in-memory store is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				_, ok := store.(*repository.MemoryStore)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the redis store points at nothing", func() {
			cfg := config.New()
			cfg.Store = config.StoreRedis
			cfg.RedisAddr = "127.0.0.1:1"
			_, _, err := newStore(context.Background(), cfg)

			convey.Convey("Then opening fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When building the stats client", func() {
			client := newStatsClient(config.New(), logger.Nop())
			convey.So(client, convey.ShouldNotBeNil)
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a started service behind the mux", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		svc := app.New(repository.NewMemoryStore(), noMinutes(),
			app.WithWorkerCount(2),
			app.WithQueueSize(10),
		)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(context.Background()) }()

		srv := httptest.NewServer(newMux(ctx, svc))
		defer srv.Close()

		convey.Convey("Then health, stats and docs respond", func() {
			for _, path := range []string{"/healthz", "/stats", "/openapi.yaml"} {
				resp, err := http.Get(srv.URL + path)
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then unknown games are not found", func() {
			resp, err := http.Get(srv.URL + "/games/0021900001/possessions")
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("Then the metrics updaters run without panicking", func() {
			convey.So(func() {
				updateSystemMetrics()
				updateServiceMetrics(ctx, svc)
			}, convey.ShouldNotPanic)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given cancelled contexts", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("Then the updaters return", func() {
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(metrics.GetRegistry(), convey.ShouldNotBeNil)
		})
	})
}
