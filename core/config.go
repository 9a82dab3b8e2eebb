package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Storage engines
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type (
	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		SecretKey    string
		Build        string
		RollbarToken string
		WorkDir      string

		Server   ServerConfig
		Storage  StorageConfig
		Database DatabaseConfig
		Identity IdentityConfig
	}

	ServerConfig struct {
		Host            string
		Address         string
		ShutdownTimeout time.Duration
	}

	StorageConfig struct {
		Engine string // memory | file | postgres
		Path   string // directory used by the file engine
		Sign   bool   // HMAC-sign persisted values with SecretKey
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// IdentityConfig tunes the simulated identity provider.
	IdentityConfig struct {
		LoginLatency      time.Duration
		OnboardingLatency time.Duration
	}
)

func (dbc DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", dbc.Host, dbc.Port)
}

// NewConfig loads the app configuration from defaults, `config/.env.<env>` and the environment.
func NewConfig() *Config {
	conf, err := LoadConfig(Getwd())
	if err != nil {
		panic(err)
	}
	return conf
}

// LoadConfig is NewConfig with an explicit work dir.
func LoadConfig(workDir string) (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Sahayak")
	v.SetDefault("secretKey", "k3x9-q#v7b!sahayak^c2m+r8w$t0y&u4i(n)5e")
	v.SetDefault("build", "dev")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("storage.engine", StorageFile)
	v.SetDefault("storage.path", filepath.Join(workDir, ".sahayak"))
	v.SetDefault("storage.sign", false)
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "sahayak")
	v.SetDefault("database.user", "sahayak")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("identity.loginLatency", 1500*time.Millisecond)
	v.SetDefault("identity.onboardingLatency", 1000*time.Millisecond)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("storage.engine", StorageMemory)
		v.SetDefault("identity.loginLatency", 0)
		v.SetDefault("identity.onboardingLatency", 0)
	case "PROD":
		v.SetDefault("debug", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		Build:        v.GetString("build"),
		RollbarToken: v.GetString("rollbarToken"),
		WorkDir:      workDir,
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Address:         v.GetString("server.address"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
		Storage: StorageConfig{
			Engine: strings.ToLower(v.GetString("storage.engine")),
			Path:   v.GetString("storage.path"),
			Sign:   v.GetBool("storage.sign"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Identity: IdentityConfig{
			LoginLatency:      v.GetDuration("identity.loginLatency"),
			OnboardingLatency: v.GetDuration("identity.onboardingLatency"),
		},
	}

	switch conf.Storage.Engine {
	case StorageMemory, StorageFile, StoragePostgres:
	default:
		return nil, NewArgumentError(fmt.Sprintf("unknown storage engine %q", conf.Storage.Engine))
	}
	return conf, nil
}
