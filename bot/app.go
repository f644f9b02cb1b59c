package bot

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ariesbot/aries/anilist"
	"github.com/ariesbot/aries/cache"
	"github.com/ariesbot/aries/core/bootstrap"
	coreconfig "github.com/ariesbot/aries/core/config"
	coredatabase "github.com/ariesbot/aries/core/database"
	coretelegram "github.com/ariesbot/aries/core/telegram"
	"github.com/ariesbot/aries/core/telegram/router"
	"github.com/ariesbot/aries/storage"
)

// Config is the application configuration file shape. The database
// section lives here, not on the core config, which must stay free of
// the database package.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
}

// CoreConfig exposes the embedded core configuration to the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// LoadConfig reads and validates the application configuration.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// App owns the assembled bot: storage, cache, content client, and the
// navigator driving the browsing sessions.
type App struct {
	cfg    *Config
	db     *sqlx.DB
	store  *storage.Store
	states *cache.StateCache
	nav    *Navigator
}

// New bootstraps infrastructure and assembles the application.
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bot: nil config")
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	store := storage.New(res.DB)
	return &App{
		cfg:    cfg,
		db:     res.DB,
		store:  store,
		states: cache.New(store),
	}, nil
}

// TelegramRunOptions builds the runtime wiring for the bot.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.registerCommands(reg)
	a.registerCallbacks(reg)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoute(reg, router.TextOptions{}))

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			// The transport needs the live bot instance, so the navigator
			// finishes assembly here, before any update is handled.
			a.nav = NewNavigator(
				a.states,
				NewAniListFetcher(anilist.NewClient(a.cfg.AniList)),
				NewTelebotTransport(rt.Bot),
				nil,
				a.cfg.AniList.PerPage,
				a.cfg.AniList.Step,
			)
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
