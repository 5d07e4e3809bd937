package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Port                      string
		DebugHost                 string
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
		ShutdownTimeout           time.Duration
		DisableReqLogs            bool
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	StorageConfig struct {
		Backend        string // local | b2
		LocalDir       string
		BaseURL        string
		B2AccountID    string
		B2AppKey       string
		B2Bucket       string
		ThumbnailWidth int
	}

	TrackingConfig struct {
		PollInterval     time.Duration
		StaleAfter       time.Duration
		HistoryRetention time.Duration
	}

	SchedulerConfig struct {
		Disabled             bool
		ReminderInterval     time.Duration
		OverdueSweepInterval time.Duration
		PruneInterval        time.Duration
		FeedSyncInterval     time.Duration
	}

	InstagramConfig struct {
		UserID      string
		AccessToken string
	}

	Config struct {
		Env                       string // DEV (local; default), TEST, QA, PROD
		Build                     string
		Debug                     bool
		TestMode                  bool
		AppName                   string
		SecretKey                 string
		WorkDir                   string
		FrontendBaseURL           string
		PasswordResetTimeoutDelta time.Duration
		RollbarToken              string
		SendgridApiKey            string
		Server                    ServerConfig
		Database                  DatabaseConfig
		Storage                   StorageConfig
		Tracking                  TrackingConfig
		Scheduler                 SchedulerConfig
		Instagram                 InstagramConfig

		defaultFromEmail string
	}
)

// NewConfig reads the configuration from the environment.
// Variables are prefixed with the environment name, eg. DEV_DATABASE_HOST.
// `config/.env.<env>` is loaded first if it exists.
func NewConfig() *Config {
	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	v := viper.New()
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v, env)

	// load .env if it exists (ignore if it does not)
	workDir := Getwd()
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:                       env,
		Build:                     v.GetString("build"),
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		AppName:                   v.GetString("appName"),
		SecretKey:                 v.GetString("secretKey"),
		WorkDir:                   workDir,
		FrontendBaseURL:           v.GetString("frontendBaseURL"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		RollbarToken:              v.GetString("rollbarToken"),
		SendgridApiKey:            v.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Port:                      v.GetString("server.port"),
			DebugHost:                 v.GetString("server.debugHost"),
			ReadTimeout:               v.GetDuration("server.readTimeout"),
			WriteTimeout:              v.GetDuration("server.writeTimeout"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:            v.GetBool("server.disableReqLogs"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Storage: StorageConfig{
			Backend:        v.GetString("storage.backend"),
			LocalDir:       v.GetString("storage.localDir"),
			BaseURL:        v.GetString("storage.baseURL"),
			B2AccountID:    v.GetString("storage.b2AccountID"),
			B2AppKey:       v.GetString("storage.b2AppKey"),
			B2Bucket:       v.GetString("storage.b2Bucket"),
			ThumbnailWidth: v.GetInt("storage.thumbnailWidth"),
		},
		Tracking: TrackingConfig{
			PollInterval:     v.GetDuration("tracking.pollInterval"),
			StaleAfter:       v.GetDuration("tracking.staleAfter"),
			HistoryRetention: v.GetDuration("tracking.historyRetention"),
		},
		Scheduler: SchedulerConfig{
			Disabled:             v.GetBool("scheduler.disabled"),
			ReminderInterval:     v.GetDuration("scheduler.reminderInterval"),
			OverdueSweepInterval: v.GetDuration("scheduler.overdueSweepInterval"),
			PruneInterval:        v.GetDuration("scheduler.pruneInterval"),
			FeedSyncInterval:     v.GetDuration("scheduler.feedSyncInterval"),
		},
		Instagram: InstagramConfig{
			UserID:      v.GetString("instagram.userID"),
			AccessToken: v.GetString("instagram.accessToken"),
		},
		defaultFromEmail: v.GetString("defaultFromEmail"),
	}
}

func setDefaults(v *viper.Viper, env string) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "develop")
	v.SetDefault("debug", env == "DEV" || env == "TEST")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("appName", "Yuva")
	v.SetDefault("secretKey", "b7#kq2-n!x0wz)r4m$9=uye+c1(h@f%v_8tls&dgja*p3o5")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "Yuva <noreply@localhost>")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("server.jwtExpirationDelta", 15*time.Minute)
	v.SetDefault("server.jwtRefreshExpirationDelta", 7*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "yuva")
	v.SetDefault("database.user", "yuva")
	v.SetDefault("database.password", "yuva")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", env == "DEV" || env == "TEST")

	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.localDir", "media")
	v.SetDefault("storage.baseURL", "http://localhost:8000/media")
	v.SetDefault("storage.thumbnailWidth", 320)

	v.SetDefault("tracking.pollInterval", 10*time.Second)
	v.SetDefault("tracking.staleAfter", 5*time.Minute)
	v.SetDefault("tracking.historyRetention", 30*24*time.Hour)

	v.SetDefault("scheduler.disabled", false)
	v.SetDefault("scheduler.reminderInterval", time.Minute)
	v.SetDefault("scheduler.overdueSweepInterval", time.Hour)
	v.SetDefault("scheduler.pruneInterval", 24*time.Hour)
	v.SetDefault("scheduler.feedSyncInterval", 6*time.Hour)
}

// NewTestConfig returns a configuration suitable for tests, it never reads the environment.
func NewTestConfig() *Config {
	return &Config{
		Env:                       "TEST",
		Build:                     "test",
		Debug:                     true,
		TestMode:                  true,
		AppName:                   "Yuva",
		SecretKey:                 "secret",
		FrontendBaseURL:           "http://localhost:3000",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: ServerConfig{
			Host:                      "localhost",
			DisableReqLogs:            true,
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Storage:   StorageConfig{Backend: "local", ThumbnailWidth: 32},
		Tracking:  TrackingConfig{PollInterval: 10 * time.Second, StaleAfter: 5 * time.Minute, HistoryRetention: 30 * 24 * time.Hour},
		Scheduler: SchedulerConfig{Disabled: true},

		defaultFromEmail: "Yuva <noreply@localhost>",
	}
}

// DefaultFromEmail parses the configured sender address.
func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
	}
	return *addr
}

// Address returns the server listen address.
func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Address returns the database host:port.
func (c DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
