package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	IndexBackendPostgres = "postgres"
	IndexBackendSQLite   = "sqlite"
	IndexBackendAMQP     = "amqp"

	SinkLog    = "log"
	SinkEmail  = "email"
	SinkNotion = "notion"
	SinkAMQP   = "amqp"
)

type Config struct {
	Port              string
	Env               string // either prod or dev, dev disables https headers and uses console logs
	DatabaseURL       string
	SessionKey        []byte
	JwtSigningKey     []byte
	AdminEmail        string
	AdminPasswordHash []byte // bcrypt hash of the admin password
	UploadDir         string
	MaxUploadBytes    int64
	IndexBackend      string
	IndexSQLitePath   string
	AMQPURL           string
	IndexQueue        string
	ApplicationQueue  string
	ApplicationSinks  []string
	EmailAPIKey       string
	HREmail           string // receives applications when the email sink is on
	NoReplyEmail      string // used for transactional emails
	SiteName          string
	SiteHost          string
	URLProtocol       string
	NotionToken       string
	NotionDatabaseID  string
	SentryDSN         string
	CORSAllowedOrigin string
	SyncTimeout       time.Duration
}

// LoadConfig reads the environment, after loading a .env file when one exists.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(err, "unable to load .env file")
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		return Config{}, fmt.Errorf("PORT cannot be empty")
	}
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		return Config{}, fmt.Errorf("ENV cannot be empty")
	}
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL cannot be empty")
	}
	sessionKeyString := os.Getenv("SESSION_KEY")
	if sessionKeyString == "" {
		return Config{}, fmt.Errorf("SESSION_KEY cannot be empty")
	}
	sessionKeyBytes, err := base64.StdEncoding.DecodeString(sessionKeyString)
	if err != nil {
		return Config{}, errors.Wrap(err, "unable to decode session key to bytes")
	}
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		return Config{}, fmt.Errorf("JWT_SIGNING_KEY cannot be empty")
	}
	jwtSigningKeyBytes, err := base64.StdEncoding.DecodeString(jwtSigningKey)
	if err != nil {
		return Config{}, errors.Wrap(err, "unable to decode jwt signing key to bytes")
	}
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		return Config{}, fmt.Errorf("ADMIN_EMAIL cannot be empty")
	}
	adminPasswordHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if adminPasswordHash == "" {
		return Config{}, fmt.Errorf("ADMIN_PASSWORD_HASH cannot be empty")
	}
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads/resumes"
	}
	maxUploadBytes := int64(5 << 20)
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		maxUploadBytes, err = strconv.ParseInt(v, 10, 64)
		if err != nil || maxUploadBytes <= 0 {
			return Config{}, errors.Errorf("MAX_UPLOAD_BYTES must be a positive integer, got %q", v)
		}
	}
	siteName := os.Getenv("SITE_NAME")
	if siteName == "" {
		return Config{}, fmt.Errorf("SITE_NAME cannot be empty")
	}
	siteHost := os.Getenv("SITE_HOST")
	if siteHost == "" {
		return Config{}, fmt.Errorf("SITE_HOST cannot be empty")
	}
	urlProtocol := "http://"
	if !strings.EqualFold(env, "dev") {
		urlProtocol = "https://"
	}
	syncTimeout := 10 * time.Second
	if v := os.Getenv("SYNC_TIMEOUT"); v != "" {
		syncTimeout, err = time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "unable to parse SYNC_TIMEOUT")
		}
	}

	cfg := Config{
		Port:              port,
		Env:               env,
		DatabaseURL:       databaseURL,
		SessionKey:        sessionKeyBytes,
		JwtSigningKey:     jwtSigningKeyBytes,
		AdminEmail:        adminEmail,
		AdminPasswordHash: []byte(adminPasswordHash),
		UploadDir:         uploadDir,
		MaxUploadBytes:    maxUploadBytes,
		IndexBackend:      strings.ToLower(getenv("INDEX_BACKEND", IndexBackendPostgres)),
		IndexSQLitePath:   getenv("INDEX_SQLITE_PATH", "content-index.db"),
		AMQPURL:           os.Getenv("AMQP_URL"),
		IndexQueue:        getenv("INDEX_QUEUE", "content_index"),
		ApplicationQueue:  getenv("APPLICATION_QUEUE", "job_applications"),
		ApplicationSinks:  splitList(getenv("APPLICATION_SINKS", SinkLog)),
		EmailAPIKey:       os.Getenv("EMAIL_API_KEY"),
		HREmail:           os.Getenv("HR_EMAIL"),
		NoReplyEmail:      os.Getenv("NO_REPLY_EMAIL"),
		SiteName:          siteName,
		SiteHost:          siteHost,
		URLProtocol:       urlProtocol,
		NotionToken:       os.Getenv("NOTION_TOKEN"),
		NotionDatabaseID:  os.Getenv("NOTION_DB_ID"),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		CORSAllowedOrigin: os.Getenv("CORS_ALLOWED_ORIGIN"),
		SyncTimeout:       syncTimeout,
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate checks the settings each selected backend and sink depends on.
func (c Config) validate() error {
	switch c.IndexBackend {
	case IndexBackendPostgres, IndexBackendSQLite:
	case IndexBackendAMQP:
		if c.AMQPURL == "" {
			return fmt.Errorf("AMQP_URL cannot be empty when INDEX_BACKEND is amqp")
		}
	default:
		return errors.Errorf("unknown INDEX_BACKEND %q", c.IndexBackend)
	}
	if len(c.ApplicationSinks) == 0 {
		return fmt.Errorf("APPLICATION_SINKS cannot be empty")
	}
	for _, sink := range c.ApplicationSinks {
		switch sink {
		case SinkLog:
		case SinkEmail:
			if c.EmailAPIKey == "" || c.HREmail == "" || c.NoReplyEmail == "" {
				return fmt.Errorf("EMAIL_API_KEY, HR_EMAIL and NO_REPLY_EMAIL cannot be empty when the email sink is enabled")
			}
		case SinkNotion:
			if c.NotionToken == "" || c.NotionDatabaseID == "" {
				return fmt.Errorf("NOTION_TOKEN and NOTION_DB_ID cannot be empty when the notion sink is enabled")
			}
		case SinkAMQP:
			if c.AMQPURL == "" {
				return fmt.Errorf("AMQP_URL cannot be empty when the amqp sink is enabled")
			}
		default:
			return errors.Errorf("unknown application sink %q", sink)
		}
	}
	return nil
}

// NeedsAMQP reports whether any component publishes to the broker.
func (c Config) NeedsAMQP() bool {
	return len(c.AMQPQueues()) > 0
}

// AMQPQueues lists the queues the enabled components publish to.
func (c Config) AMQPQueues() []string {
	var queues []string
	if c.IndexBackend == IndexBackendAMQP {
		queues = append(queues, c.IndexQueue)
	}
	for _, s := range c.ApplicationSinks {
		if s == SinkAMQP {
			queues = append(queues, c.ApplicationQueue)
			break
		}
	}
	return queues
}

func (c Config) SiteURL() string {
	return c.URLProtocol + c.SiteHost
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
