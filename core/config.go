package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName         string
		Env             string
		Build           string
		Debug           bool
		TestMode        bool
		SecretKey       string
		FrontendBaseURL string
		RollbarToken    string
		SendgridAPIKey  string
		FromEmail       string

		Server    serverConfig
		Database  databaseConfig
		Redis     redisConfig
		SMS       smsConfig
		ImageHost imageHostConfig
		Students  studentsConfig
	}

	serverConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		PasswordResetTimeoutDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	databaseConfig struct {
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

	redisConfig struct {
		Address  string
		Password string
		DB       int
	}

	smsConfig struct {
		BaseURL  string
		APIKey   string
		SenderID string
		Rate     decimal.Decimal // per SMS part
		Timeout  time.Duration
		// Balance reported by the console gateway in DEBUG mode.
		ConsoleBalance decimal.Decimal
	}

	imageHostConfig struct {
		BaseURL  string
		APIKey   string
		MaxWidth int
		Quality  int
	}

	studentsConfig struct {
		PageSize        int
		ExportBatchSize int
	}
)

// NewConfig loads the configuration of the current environment.
// ENV selects the profile: DEV (local; default), TEST, QA, PROD. It is also the prefix of every env var,
// e.g. DEV_SMS_APIKEY.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("appName", "MySchool")
	conf.SetDefault("build", "develop")
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("secretKey", "k3q9-w(e)rx$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridAPIKey", "")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.port", "8000")
	conf.SetDefault("server.debugPort", "4000")
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	conf.SetDefault("server.passwordResetTimeoutDelta", 3*24*time.Hour)
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.name", "myschool")
	conf.SetDefault("database.user", "myschool")
	conf.SetDefault("database.password", "")
	conf.SetDefault("database.adminUser", "")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("database.disableTLS", true)

	conf.SetDefault("redis.address", "")
	conf.SetDefault("redis.password", "")
	conf.SetDefault("redis.db", 0)

	conf.SetDefault("sms.baseURL", "http://localhost:5000")
	conf.SetDefault("sms.apiKey", "")
	conf.SetDefault("sms.senderID", "")
	conf.SetDefault("sms.rate", "0.35")
	conf.SetDefault("sms.timeout", 10*time.Second)
	conf.SetDefault("sms.consoleBalance", "100")

	conf.SetDefault("imageHost.baseURL", "https://api.imgbb.com")
	conf.SetDefault("imageHost.apiKey", "")
	conf.SetDefault("imageHost.maxWidth", 600)
	conf.SetDefault("imageHost.quality", 80)

	conf.SetDefault("students.pageSize", 50)
	conf.SetDefault("students.exportBatchSize", 100)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	host := conf.GetString("server.host")
	c := &Config{
		AppName:         conf.GetString("appName"),
		Env:             env,
		Build:           conf.GetString("build"),
		Debug:           conf.GetBool("debug"),
		TestMode:        conf.GetBool("testMode"),
		SecretKey:       conf.GetString("secretKey"),
		FrontendBaseURL: conf.GetString("frontendBaseURL"),
		RollbarToken:    conf.GetString("rollbarToken"),
		SendgridAPIKey:  conf.GetString("sendgridAPIKey"),
		FromEmail:       conf.GetString("defaultFromEmail"),
		Server: serverConfig{
			Host:                      host,
			Address:                   net.JoinHostPort(host, conf.GetString("server.port")),
			DebugHost:                 net.JoinHostPort(host, conf.GetString("server.debugPort")),
			JWTExpirationDelta:        conf.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server.jwtRefreshExpirationDelta"),
			PasswordResetTimeoutDelta: conf.GetDuration("server.passwordResetTimeoutDelta"),
			ShutdownTimeout:           conf.GetDuration("server.shutdownTimeout"),
		},
		Database: databaseConfig{
			Engine:        conf.GetString("database.engine"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			Name:          conf.GetString("database.name"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
		},
		Redis: redisConfig{
			Address:  conf.GetString("redis.address"),
			Password: conf.GetString("redis.password"),
			DB:       conf.GetInt("redis.db"),
		},
		SMS: smsConfig{
			BaseURL:        strings.TrimRight(conf.GetString("sms.baseURL"), "/"),
			APIKey:         conf.GetString("sms.apiKey"),
			SenderID:       conf.GetString("sms.senderID"),
			Rate:           mustDecimal("sms.rate", conf.GetString("sms.rate")),
			Timeout:        conf.GetDuration("sms.timeout"),
			ConsoleBalance: mustDecimal("sms.consoleBalance", conf.GetString("sms.consoleBalance")),
		},
		ImageHost: imageHostConfig{
			BaseURL:  strings.TrimRight(conf.GetString("imageHost.baseURL"), "/"),
			APIKey:   conf.GetString("imageHost.apiKey"),
			MaxWidth: conf.GetInt("imageHost.maxWidth"),
			Quality:  conf.GetInt("imageHost.quality"),
		},
		Students: studentsConfig{
			PageSize:        conf.GetInt("students.pageSize"),
			ExportBatchSize: conf.GetInt("students.exportBatchSize"),
		},
	}
	return c
}

func (c Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.FromEmail}
}

func (db databaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

func mustDecimal(key, val string) decimal.Decimal {
	d, err := decimal.NewFromString(val)
	if err != nil {
		log.Fatalf("config.%s(%q): %v", key, val, err)
	}
	return d
}
