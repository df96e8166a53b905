package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"

	"github.com/fourmiz/fourmiz-idm/pkg/notification"
	"github.com/fourmiz/fourmiz-idm/pkg/profile"
	"github.com/fourmiz/fourmiz-idm/pkg/ratelimit"
	"github.com/fourmiz/fourmiz-idm/pkg/rolepref"
	"github.com/fourmiz/fourmiz-idm/pkg/session"
	sessionapi "github.com/fourmiz/fourmiz-idm/pkg/session/api"
	"github.com/fourmiz/fourmiz-idm/pkg/upgrade"
	upgradeapi "github.com/fourmiz/fourmiz-idm/pkg/upgrade/api"
)

type DbConfig struct {
	Host     string `env:"FOURMIZ_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"FOURMIZ_PG_PORT" env-default:"5432"`
	Database string `env:"FOURMIZ_PG_DATABASE" env-default:"fourmiz_db"`
	User     string `env:"FOURMIZ_PG_USER" env-default:"fourmiz"`
	Password string `env:"FOURMIZ_PG_PASSWORD" env-default:"pwd"`
}

func (d DbConfig) toDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		d.User, d.Password, d.Host, d.Port, d.Database)
}

type JwtConfig struct {
	JwtSecret string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
}

type PersistenceConfig struct {
	// Type selects where profiles and role preferences live:
	// postgres, file or inmem
	Type    string `env:"FOURMIZ_PERSISTENCE_TYPE" env-default:"file"`
	DataDir string `env:"FOURMIZ_DATA_DIR" env-default:"./data"`
}

type SessionConfig struct {
	StoreTimeoutSecs int `env:"FOURMIZ_STORE_TIMEOUT_SECS" env-default:"3"`
}

type EmailConfig struct {
	Enabled  bool   `env:"EMAIL_ENABLED" env-default:"false"`
	Host     string `env:"EMAIL_HOST" env-default:"localhost"`
	Port     int    `env:"EMAIL_PORT" env-default:"1025"`
	TLS      bool   `env:"EMAIL_TLS" env-default:"false"`
	Username string `env:"EMAIL_USERNAME" env-default:""`
	Password string `env:"EMAIL_PASSWORD" env-default:""`
	From     string `env:"EMAIL_FROM" env-default:"noreply@fourmiz.app"`
	OpsEmail string `env:"EMAIL_OPS" env-default:"ops@fourmiz.app"`
}

type Config struct {
	DbConfig          DbConfig
	AppConfig         app.AppConfig
	JwtConfig         JwtConfig
	PersistenceConfig PersistenceConfig
	SessionConfig     SessionConfig
	EmailConfig       EmailConfig
}

func main() {
	godotenv.Load()

	config := Config{}
	cleanenv.ReadEnv(&config)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	var pool *pgxpool.Pool
	if config.PersistenceConfig.Type == "postgres" || config.PersistenceConfig.Type == "postgresql" {
		var err error
		pool, err = pgxpool.New(context.Background(), config.DbConfig.toDatabaseURL())
		if err != nil {
			slog.Error("Failed creating dbpool", "db", config.DbConfig.Database,
				"host", config.DbConfig.Host, "port", config.DbConfig.Port, "user", config.DbConfig.User)
			os.Exit(-1)
		}
	}

	profileRepo, err := profile.NewProfileRepository(config.PersistenceConfig.Type, profile.RepositoryConfig{
		Pool:    pool,
		DataDir: config.PersistenceConfig.DataDir,
	})
	if err != nil {
		slog.Error("Failed creating profile repository", "type", config.PersistenceConfig.Type, "err", err)
		os.Exit(-1)
	}

	prefRepo, err := rolepref.NewRepository(config.PersistenceConfig.Type, rolepref.RepositoryConfig{
		Pool:    pool,
		DataDir: config.PersistenceConfig.DataDir,
	})
	if err != nil {
		slog.Error("Failed creating role preference repository", "type", config.PersistenceConfig.Type, "err", err)
		os.Exit(-1)
	}

	upgradeRepo, err := upgrade.NewRepository(config.PersistenceConfig.Type, upgrade.RepositoryConfig{
		Pool:    pool,
		DataDir: config.PersistenceConfig.DataDir,
	})
	if err != nil {
		slog.Error("Failed creating upgrade request repository", "type", config.PersistenceConfig.Type, "err", err)
		os.Exit(-1)
	}

	profileService := profile.NewProfileService(profileRepo)

	storeTimeout := time.Duration(config.SessionConfig.StoreTimeoutSecs) * time.Second
	manager := session.NewManager(prefRepo, session.WithStoreTimeout(storeTimeout))

	var notifier notification.Notifier = notification.NewNoopNotifier()
	if config.EmailConfig.Enabled {
		emailNotifier, err := notification.NewEmailNotifier(notification.SMTPConfig{
			Host:     config.EmailConfig.Host,
			Port:     config.EmailConfig.Port,
			TLS:      config.EmailConfig.TLS,
			Username: config.EmailConfig.Username,
			Password: config.EmailConfig.Password,
			From:     config.EmailConfig.From,
		})
		if err != nil {
			slog.Error("Failed creating email notifier", "err", err)
			os.Exit(-1)
		}
		notifier = emailNotifier
	}

	upgradeService := upgrade.NewService(upgradeRepo, profileRepo,
		upgrade.WithNotifier(notifier, config.EmailConfig.OpsEmail))

	sessionHandle := sessionapi.NewHandle(manager, profileService)
	upgradeHandle := upgradeapi.NewHandle(upgradeService)

	tokenAuth := jwtauth.New("HS256", []byte(config.JwtConfig.JwtSecret), nil)
	switchLimiter := ratelimit.NewMiddleware(ratelimit.DefaultConfig())

	server.R.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Use(switchLimiter.Handler)
		sessionHandle.RegisterRoutes(r)
		upgradeHandle.RegisterRoutes(r)
	})

	server.Run()
}
