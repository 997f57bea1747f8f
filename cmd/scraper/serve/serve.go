// Package servecmder provides the proxy serve command.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/capture"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/cliui"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/config"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/eventstream"
	kafkapub "github.com/riddlemeS4m/cursor-prompt-scraper/pkg/eventstream/kafka"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/eventstream/nop"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/extract"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/filelog"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/ledger"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/logger"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/pipeline"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/storage"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/storage/inmemory"
	nopstore "github.com/riddlemeS4m/cursor-prompt-scraper/pkg/storage/nop"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/storage/postgres"
	"github.com/riddlemeS4m/cursor-prompt-scraper/pkg/storage/sqlite"
	"github.com/riddlemeS4m/cursor-prompt-scraper/proxy"
	"github.com/riddlemeS4m/cursor-prompt-scraper/proxy/worker"
)

type serveCommander struct {
	listen         string
	upstream       string
	backend        string
	sqlitePath     string
	postgresURL    string
	logDir         string
	fileLogging    bool
	consoleLogging bool

	cfg    *config.Config
	logger *zap.Logger
}

const serveLongDesc string = `Run the intercepting proxy.

The proxy transparently forwards editor traffic to the upstream API while
capturing chat-endpoint request bodies. Each capture is written to the
per-session log files, extracted, fingerprinted, and stored once per unique
content per session.

If the store cannot be reached the proxy keeps running file-only and reports
zeroed statistics on shutdown.`

const serveShortDesc string = "Run the intercepting proxy"

var serveFlags = []string{
	config.FlagListen,
	config.FlagUpstream,
	config.FlagStorageBackend,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagLogDir,
	config.FlagFileLogging,
	config.FlagConsoleLogging,
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)

			// --debug is persistent on the root command.
			if f := cmd.Flag("debug"); f != nil {
				_ = v.BindPFlag("logs.debug", f)
			}

			cmder.cfg, err = config.Load(v)
			return err
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagUpstream, &cmder.upstream)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageBackend, &cmder.backend)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagLogDir, &cmder.logDir)
	// --debug is a persistent flag on the root command; BindRegisteredFlags
	// picks it up from the inherited flag set.
	config.AddBoolFlag(cmd, config.Flags, config.FlagFileLogging, &cmder.fileLogging)
	config.AddBoolFlag(cmd, config.Flags, config.FlagConsoleLogging, &cmder.consoleLogging)

	return cmd
}

func (c *serveCommander) run() error {
	cfg := c.cfg
	if cfg.Logs.ConsoleLogging {
		c.logger = logger.NewLogger(cfg.Logs.Debug)
	} else {
		c.logger = logger.Nop()
	}
	defer func() { _ = c.logger.Sync() }()

	sess := capture.NewSession()

	statusW := io.Discard
	if cfg.Logs.ConsoleLogging {
		statusW = os.Stdout
	}

	var driver storage.Driver
	if err := cliui.Step(statusW, "connecting "+cfg.Storage.Backend+" store", func() error {
		var err error
		driver, err = c.connectStorage(cfg)
		return err
	}); err != nil {
		c.logger.Warn("store unavailable, continuing file-only", zap.Error(err))
		driver = nopstore.NewDriver()
	}
	defer driver.Close()

	var files filelog.Sink
	if err := cliui.Step(statusW, "opening session log files", func() error {
		var err error
		files, err = c.newFileSink(cfg, sess)
		return err
	}); err != nil {
		return err
	}
	defer files.Close()

	publisher := c.newPublisher(cfg)
	defer publisher.Close()

	pipe, err := pipeline.New(pipeline.Options{
		Extractor:    extract.NewChain(extract.NewEnvelope(), extract.NewBraceScanner()),
		Files:        files,
		Store:        driver,
		Publisher:    publisher,
		Logger:       c.logger,
		StoreTimeout: time.Duration(cfg.Storage.TimeoutMS) * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}

	pool, err := worker.NewPool(&worker.Config{
		Pipeline:   pipe,
		NumWorkers: cfg.Proxy.Workers,
		QueueSize:  cfg.Proxy.QueueSize,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}

	led := ledger.New(driver, c.logger)
	ctx := context.Background()
	if err := led.Start(ctx, sess); err != nil {
		c.logger.Warn("could not record session start", zap.Error(err))
	}

	if !capture.IsCursorHost(cfg.Proxy.Upstream) {
		c.logger.Warn("upstream does not look like a Cursor API host",
			zap.String("upstream", cfg.Proxy.Upstream))
	}

	p, err := proxy.New(proxy.Config{
		ListenAddr:  cfg.Proxy.Listen,
		UpstreamURL: cfg.Proxy.Upstream,
	}, sess, pool, c.logger)
	if err != nil {
		return fmt.Errorf("creating proxy: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- p.Run() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		c.logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			c.logger.Error("proxy server failed", zap.Error(err))
		}
	}

	// Shutdown order matters: stop accepting traffic, drain in-flight
	// captures, then seal the session.
	if err := p.Close(); err != nil {
		c.logger.Warn("closing proxy", zap.Error(err))
	}
	pool.Close()

	if err := led.End(ctx, sess); err != nil {
		c.logger.Warn("could not record session end", zap.Error(err))
	}

	c.printStats(ctx, driver, sess)

	return nil
}

// connectStorage opens the configured backend. The caller decides how to
// degrade when the store is unreachable.
func (c *serveCommander) connectStorage(cfg *config.Config) (storage.Driver, error) {
	ctx := context.Background()

	switch cfg.Storage.Backend {
	case "sqlite":
		return sqlite.NewDriver(ctx, cfg.Storage.SQLitePath)
	case "postgres":
		return postgres.NewDriver(ctx, cfg.Storage.PostgresURL)
	case "memory":
		return inmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newFileSink opens the per-session capture files. Unlike the store, the log
// directory is required: without it there is no capture of record.
func (c *serveCommander) newFileSink(cfg *config.Config, sess *capture.Session) (filelog.Sink, error) {
	if !cfg.Logs.FileLogging {
		c.logger.Info("file logging disabled")
		return filelog.Discard{}, nil
	}

	files, err := filelog.NewWriter(cfg.Logs.Dir, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("opening session log files: %w", err)
	}

	c.logger.Info("session log files opened",
		zap.String("dir", cfg.Logs.Dir),
		zap.String("session_id", sess.ID))

	return files, nil
}

func (c *serveCommander) newPublisher(cfg *config.Config) eventstream.Publisher {
	if !cfg.Kafka.Enabled {
		return nop.NewPublisher()
	}

	c.logger.Info("kafka event stream enabled",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic))

	return kafkapub.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
}

func (c *serveCommander) printStats(ctx context.Context, driver storage.Driver, sess *capture.Session) {
	stats, err := driver.Stats(ctx, sess.ID)
	if err != nil {
		if !errors.Is(err, storage.ErrUnavailable) {
			c.logger.Warn("could not read session stats", zap.Error(err))
		}
		return
	}

	fmt.Fprintln(os.Stdout, cliui.RenderStats(stats))
}
