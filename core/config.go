package core

import (
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	DatabaseConfig struct {
		Engine        string // postgres | sqlite3
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite3 only
	}

	SchedulerConfig struct {
		MinChunkMin       int
		RetryStepMin      int
		WeeklyHorizonDays int
		PomodoroMin       int
		WindowDays        int
	}

	Config struct {
		Env          string
		Build        string
		AppName      string
		Debug        bool
		TestMode     bool
		LogLevel     string
		RollbarToken string

		SendgridApiKey   string
		FromEmail        string
		FromName         string
		DigestRecipients string // comma separated

		Database  DatabaseConfig
		Scheduler SchedulerConfig
	}
)

func (dc DatabaseConfig) Address() string {
	if dc.Port == "" {
		return dc.Host
	}
	return net.JoinHostPort(dc.Host, dc.Port)
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.FromName, Address: c.FromEmail}
}

// DigestAddresses parses the comma separated digest recipients.
// All invalid entries are reported together.
func (c *Config) DigestAddresses() ([]mail.Address, error) {
	var (
		addrs   []mail.Address
		invalid []string
	)
	for _, part := range strings.Split(c.DigestRecipients, ",") {
		part = CleanString(part)
		if part == "" {
			continue
		}
		a, err := mail.ParseAddress(part)
		if err != nil {
			invalid = append(invalid, strconv.Quote(part))
			continue
		}
		addrs = append(addrs, *a)
	}
	if len(invalid) > 0 {
		return addrs, errors.Errorf("invalid digest recipient(s): %s", strings.Join(invalid, ", "))
	}
	return addrs, nil
}

// NewConfig reads the configuration for the environment named by $ENV
// (DEV by default; TEST, QA, PROD), from config/.env.<env> if present and from the environment.
func NewConfig() (*Config, error) {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Study Planner")
	v.SetDefault("logLevel", "info")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("fromEmail", "noreply@localhost")
	v.SetDefault("fromName", "Study Planner")
	v.SetDefault("digestRecipients", "")

	v.SetDefault("database.engine", "sqlite3")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "planner")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.path", "planner.db")

	v.SetDefault("scheduler.minChunkMin", 15)
	v.SetDefault("scheduler.retryStepMin", 15)
	v.SetDefault("scheduler.weeklyHorizonDays", 70)
	v.SetDefault("scheduler.pomodoroMin", 25)
	v.SetDefault("scheduler.windowDays", 7)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	case "QA", "PROD":
		v.SetDefault("debug", false)
	}
	v.SetDefault("env", env)
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}
	v.AutomaticEnv()

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	return conf, nil
}
