// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/api"
	"github.com/vechain/stakepool/api/doc"
	"github.com/vechain/stakepool/co"
	"github.com/vechain/stakepool/engine"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/pool"
)

const maxRequestBodySize = 64 * 1024

func defaultAction(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	logLevel := initLogger(cfg, os.Stderr)

	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	if cfg.Metrics.Enabled {
		metrics.InitializePrometheusMetrics()
	}

	db, location, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing database..."); db.Close() }()

	policy, err := pool.ParseZeroStakePolicy(cfg.Pool.ZeroStakePolicy)
	if err != nil {
		return err
	}
	eng, err := engine.New(db, engine.Options{
		CacheSize: cfg.StateCache,
		Pool:      pool.Options{ZeroStakePolicy: policy},
	})
	if err != nil {
		return err
	}

	var apiLogs atomic.Bool
	apiLogs.Store(cfg.API.EnableLogs)
	opts := api.Options{
		AllowedOrigins:       cfg.API.Cors,
		EnableReqLogger:      &apiLogs,
		SlowQueriesThreshold: cfg.API.SlowQueriesThreshold,
		EnableMetrics:        cfg.Metrics.Enabled,
		Faucet:               cfg.Faucet,
	}
	if cfg.Admin.Enabled {
		opts.LogLevel = logLevel
	}

	apiURL, srvCloser, err := startAPIServer(cfg, api.New(eng, opts))
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	metricsURL := ""
	if cfg.Metrics.Enabled {
		url, closeFunc, err := startMetricsServer(cfg.Metrics.Addr)
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
		metricsURL = url
	}

	summary, err := eng.Pool()
	if err != nil {
		return err
	}
	printStartupMessage(os.Stdout, summary, eng, location, policy, apiURL, metricsURL)

	<-exitSignal.Done()
	return nil
}

// initLogger installs the root logger and returns the level variable that the admin api adjusts.
func initLogger(cfg *Config, w io.Writer) *slog.LevelVar {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(cfg.Log.Verbosity))

	// validated by makeConfig
	format, _ := log.ParseFormat(cfg.Log.Format)
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
	}
	handler := log.NewHandler(w, format, &level, useColor)
	log.SetDefault(log.NewLogger(handler))
	return &level
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

// openStore returns the database and where it lives, for the startup message.
func openStore(cfg *Config) (*lvldb.LevelDB, string, error) {
	if cfg.Memory {
		db, err := lvldb.NewMem()
		return db, "Memory", err
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, "", errors.Wrapf(err, "create data dir [%v]", cfg.DataDir)
	}
	cacheMB := normalizeCacheSize(cfg.Cache)
	logger.Debug("cache size(MB)", "size", cacheMB)
	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(cfg.DataDir, "pool.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, "", errors.Wrapf(err, "open pool database [%v]", dir)
	}
	return db, dir, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/4 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 4)
		if limitMB > 0 && sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 16
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 1024 {
		return 1024
	}
	return n
}

func startAPIServer(cfg *Config, handler http.Handler) (string, func(), error) {
	listener, err := net.Listen("tcp", cfg.API.Addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", cfg.API.Addr)
	}
	if cfg.API.TimeoutMs > 0 {
		handler = handleAPITimeout(handler, time.Duration(cfg.API.TimeoutMs)*time.Millisecond)
	}
	handler = requestBodyLimit(handler)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		if !goes.WaitTimeout(5 * time.Second) {
			logger.Warn("API server did not exit in time")
		}
	}, nil
}

func startMetricsServer(addr string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen metrics API addr [%v]", addr)
	}

	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	handler := handlers.CompressHandler(router)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

// handleAPITimeout bounds read requests only. A POST may already be committed
// when the deadline passes, so it always runs to completion.
func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	th := http.TimeoutHandler(h, timeout, "request timed out")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			h.ServeHTTP(w, r)
			return
		}
		th.ServeHTTP(w, r)
	})
}

func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		h.ServeHTTP(w, r)
	})
}

func printStartupMessage(
	w io.Writer,
	summary *pool.Summary,
	eng *engine.Engine,
	location string,
	policy pool.ZeroStakePolicy,
	apiURL string,
	metricsURL string,
) {
	assets := "not initialized"
	if summary.Initialized {
		assets = fmt.Sprintf("stake %v reward %v", summary.StakeAsset, summary.RewardAsset)
	}
	if metricsURL == "" {
		metricsURL = "disabled"
	}

	fmt.Fprintf(w, `Starting %v
    Pool         [ %v ]
    Assets       [ %v ]
    Total staked [ %v, %v stakers ]
    Zero stake   [ %v ]
    Data         [ %v ]
    API portal   [ %v ]
    API doc      [ %vdoc/stakepool.yaml v%v ]
    Metrics      [ %v ]
`,
		makeName("Stakepool", fullVersion()),
		eng.PoolAddress(),
		assets,
		summary.TotalStaked.Dec(), summary.StakerCount,
		policy,
		location,
		apiURL,
		apiURL, doc.Version(),
		metricsURL)
}
