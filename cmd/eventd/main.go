package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/eventd/internal/config"
	appLog "github.com/sandeepkv93/eventd/internal/log"
	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/scheduler"
	"github.com/sandeepkv93/eventd/internal/service"
	"github.com/sandeepkv93/eventd/internal/storage"
	"github.com/sandeepkv93/eventd/internal/update"
)

type flagConfig struct {
	configPath string
	envPath    string
	dbPath     string
	dsn        string
	memory     bool
	logLevel   string
	headless   bool
}

func main() {
	flags := parseFlags()

	cfg, err := config.Resolve(flags.configPath, flags.envPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		if cfg == nil {
			os.Exit(1)
		}
	}
	applyFlags(cfg, flags)
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	if !flags.headless && cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "eventd")
		if err != nil {
			fmt.Fprintf(os.Stderr, "eventd: open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		appLog.SetOutput(f)
	}

	loc, err := cfg.Location()
	if err != nil {
		appLog.Error("invalid timezone", err, "timezone", cfg.Timezone)
		os.Exit(1)
	}

	appLog.Info("eventd starting",
		"driver", cfg.Database.Driver,
		"timezone", loc.String(),
		"poll_interval", cfg.PollEvery().String(),
		"default_view", cfg.DefaultView,
		"headless", flags.headless,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		appLog.Error("failed to open storage", err, "driver", cfg.Database.Driver)
		os.Exit(1)
	}
	defer repo.Close()

	svc := service.NewEventService(repo, model.ExpandOptions{
		MaxOccurrences: cfg.MaxOccurrences,
		HorizonYears:   cfg.HorizonYears,
	})
	poller := scheduler.NewPoller(svc, scheduler.PollerOptions{
		Interval:   cfg.PollEvery(),
		Location:   loc,
		BufferSize: cfg.NotificationBuffer,
	})
	if err := poller.Start(); err != nil {
		appLog.Error("failed to start poller", err)
		os.Exit(1)
	}
	defer poller.Stop()

	if flags.headless {
		runHeadless(ctx, poller)
		return
	}

	var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
	if cfg.DesktopNotifications {
		notifier = update.ExecDesktopNotifier{}
	}
	view, _ := model.ParseView(cfg.DefaultView)
	m := update.NewModel(update.Options{
		Service:              svc,
		Poller:               poller,
		Notifier:             notifier,
		DesktopNotifications: cfg.DesktopNotifications,
		Location:             loc,
		DefaultView:          view,
		DefaultNotification:  cfg.DefaultNotification,
		StateFile:            cfg.StateFile,
		Holidays:             cfg.Holidays,
		Context:              ctx,
	})

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		appLog.Error("tui failed", err)
		fmt.Fprintf(os.Stderr, "eventd failed: %v\n", err)
		os.Exit(1)
	}
	appLog.Info("eventd exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "eventd.yaml", "Path to config file (created with defaults if missing)")
	flag.StringVar(&cfg.envPath, "env", ".env", "Optional .env file with EVENTD_* overrides")
	flag.StringVar(&cfg.dbPath, "db", "", "SQLite database path (overrides config)")
	flag.StringVar(&cfg.dsn, "postgres", "", "PostgreSQL DSN; selects the postgres driver")
	flag.BoolVar(&cfg.memory, "memory", false, "Keep events in memory only")
	flag.StringVar(&cfg.logLevel, "log-level", "", "debug, info or error (overrides config)")
	flag.BoolVar(&cfg.headless, "headless", false, "Run without the TUI and print notifications to stdout")

	flag.Parse()

	return cfg
}

func applyFlags(cfg *config.Config, flags flagConfig) {
	if flags.dbPath != "" {
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = flags.dbPath
	}
	if flags.dsn != "" {
		cfg.Database.Driver = config.DriverPostgres
		cfg.Database.DSN = flags.dsn
	}
	if flags.memory {
		cfg.Database.Driver = config.DriverMemory
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
}

func openRepository(ctx context.Context, cfg *config.Config) (storage.Repository, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		return storage.NewMemoryRepository(), nil
	case config.DriverPostgres:
		if cfg.Database.DSN == "" {
			return nil, fmt.Errorf("postgres driver requires a DSN")
		}
		return storage.OpenPostgres(ctx, cfg.Database.DSN)
	default:
		return storage.OpenSQLite(cfg.Database.Path)
	}
}

func runHeadless(ctx context.Context, poller *scheduler.Poller) {
	for {
		select {
		case <-ctx.Done():
			appLog.Info("signal received, shutting down")
			return
		case n, ok := <-poller.C():
			if !ok {
				return
			}
			fmt.Printf("%s %s\n", n.FireAt.Format("2006-01-02 15:04"), n.Message)
		}
	}
}
