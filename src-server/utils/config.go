package utils

import (
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	port string

	discordAppToken string
	discordClientId string
	discordGuildID  string

	idTokenSecret string
	idTokenExpire time.Duration

	publicURL          string
	githubClientID     string
	githubClientSecret string

	eventpopEventID    int64
	eventpopGatewayURL string
	eventpopPublicKey  string
	eventpopRoleID     string

	databasePath    string
	backupDir       string
	eventConfigPath string

	metricCollectionInterval time.Duration
	httpRateLimit            float64
}

func NewConfig() *Config {
	c := &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		discordAppToken: func() string {
			discordAppToken := os.Getenv("DISCORD_APP_TOKEN")
			if discordAppToken == "" {
				slog.Error("DISCORD_APP_TOKEN is not set")
				os.Exit(1)
			}
			slog.Debug("env", "DISCORD_APP_TOKEN", discordAppToken[0:min(3, len(discordAppToken))]+"...")
			return discordAppToken
		}(),
		discordClientId: func() string {
			discordClientId := os.Getenv("DISCORD_CLIENT_ID")
			if discordClientId == "" {
				slog.Error("DISCORD_CLIENT_ID is not set")
				os.Exit(1)
			}
			slog.Debug("env", "DISCORD_CLIENT_ID", discordClientId)
			return discordClientId
		}(),
		discordGuildID: func() string {
			discordGuildID := os.Getenv("DISCORD_GUILD_ID")
			if discordGuildID == "" {
				slog.Error("DISCORD_GUILD_ID is not set")
				os.Exit(1)
			}
			slog.Debug("env", "DISCORD_GUILD_ID", discordGuildID)
			return discordGuildID
		}(),

		idTokenSecret: func() string {
			secret := os.Getenv("ID_TOKEN_SECRET")
			if secret == "" {
				slog.Warn("ID_TOKEN_SECRET is not set")
				secret = "secret"
			}
			return secret
		}(),
		idTokenExpire: durationEnv("ID_TOKEN_EXPIRE", "60m"),

		githubClientID: func() string {
			githubClientID := os.Getenv("GITHUB_CLIENT_ID")
			if githubClientID == "" {
				slog.Warn("GITHUB_CLIENT_ID is not set, GitHub linking will not work")
			}
			slog.Debug("env", "GITHUB_CLIENT_ID", githubClientID)
			return githubClientID
		}(),
		githubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),

		eventpopEventID: func() int64 {
			raw := os.Getenv("EVENTPOP_EVENT_ID")
			if raw == "" {
				raw = "13449"
			}
			eventID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				slog.Error("invalid EVENTPOP_EVENT_ID", "value", raw, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "EVENTPOP_EVENT_ID", eventID)
			return eventID
		}(),
		eventpopGatewayURL: func() string {
			gatewayURL := os.Getenv("EVENTPOP_GATEWAY_URL")
			if gatewayURL == "" {
				gatewayURL = "https://eventpop-ticket-gateway.vercel.app/redirect.html"
			}
			slog.Debug("env", "EVENTPOP_GATEWAY_URL", gatewayURL)
			return gatewayURL
		}(),
		eventpopPublicKey: func() string {
			publicKey := os.Getenv("EVENTPOP_PUBLIC_KEY")
			if publicKey == "" {
				slog.Warn("EVENTPOP_PUBLIC_KEY is not set, Eventpop ticket linking will not work")
			}
			return publicKey
		}(),
		eventpopRoleID: os.Getenv("EVENTPOP_ROLE_ID"),

		databasePath: func() string {
			databasePath := os.Getenv("DATABASE_PATH")
			if databasePath == "" {
				databasePath = "./sqlite.db"
			}
			slog.Debug("env", "DATABASE_PATH", databasePath)
			return databasePath
		}(),
		backupDir: func() string {
			backupDir := os.Getenv("BACKUP_DIR")
			if backupDir == "" {
				backupDir = "./backups"
			}
			slog.Debug("env", "BACKUP_DIR", backupDir)
			return filepath.Clean(backupDir)
		}(),
		eventConfigPath: func() string {
			eventConfigPath := os.Getenv("EVENT_CONFIG")
			if eventConfigPath == "" {
				eventConfigPath = "./event.yaml"
			}
			slog.Debug("env", "EVENT_CONFIG", eventConfigPath)
			return eventConfigPath
		}(),

		metricCollectionInterval: durationEnv("METRIC_COLLECTION_INTERVAL", "5s"),
		httpRateLimit: func() float64 {
			raw := os.Getenv("HTTP_RATE_LIMIT")
			if raw == "" {
				raw = "10"
			}
			limit, err := strconv.ParseFloat(raw, 64)
			if err != nil || limit <= 0 {
				slog.Error("invalid HTTP_RATE_LIMIT", "value", raw, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "HTTP_RATE_LIMIT", limit)
			return limit
		}(),
	}

	c.publicURL = func() string {
		publicURL := os.Getenv("PUBLIC_URL")
		if publicURL == "" {
			publicURL = "http://localhost:" + c.port
			slog.Warn("PUBLIC_URL is not set", "fallback", publicURL)
		}
		if _, err := url.Parse(publicURL); err != nil {
			slog.Error("invalid PUBLIC_URL", "error", err)
			os.Exit(1)
		}
		slog.Debug("env", "PUBLIC_URL", publicURL)
		return strings.TrimSuffix(publicURL, "/")
	}()

	return c
}

func durationEnv(name string, fallback string) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		slog.Warn(name+" is not set", "fallback", fallback)
		raw = fallback
	}
	duration, err := time.ParseDuration(raw)
	if err != nil || duration <= 0 {
		slog.Error("invalid "+name, "value", raw, "error", err)
		os.Exit(1)
	}
	slog.Debug("env", name, raw, "duration", duration)
	return duration
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get DISCORD_APP_TOKEN env
func (c *Config) GetDiscordAppToken() string {
	return c.discordAppToken
}

// Get DISCORD_CLIENT_ID env
func (c *Config) GetDiscordClientId() string {
	return c.discordClientId
}

// Get DISCORD_GUILD_ID env
func (c *Config) GetDiscordGuildID() string {
	return c.discordGuildID
}

// Get ID_TOKEN_SECRET env
func (c *Config) GetIDTokenSecret() string {
	return c.idTokenSecret
}

// Get ID_TOKEN_EXPIRE env, default to 60 minutes
func (c *Config) GetIDTokenExpire() time.Duration {
	return c.idTokenExpire
}

// Get PUBLIC_URL env without the trailing slash
func (c *Config) GetPublicURL() string {
	return c.publicURL
}

// Get GITHUB_CLIENT_ID env
func (c *Config) GetGitHubClientID() string {
	return c.githubClientID
}

// Get GITHUB_CLIENT_SECRET env
func (c *Config) GetGitHubClientSecret() string {
	return c.githubClientSecret
}

// Get EVENTPOP_EVENT_ID env, default to 13449
func (c *Config) GetEventpopEventID() int64 {
	return c.eventpopEventID
}

// Get EVENTPOP_GATEWAY_URL env
func (c *Config) GetEventpopGatewayURL() string {
	return c.eventpopGatewayURL
}

// Get EVENTPOP_PUBLIC_KEY env, a PEM encoded RSA public key
func (c *Config) GetEventpopPublicKey() string {
	return c.eventpopPublicKey
}

// Get EVENTPOP_ROLE_ID env, the role given to ticket holders of the event
func (c *Config) GetEventpopRoleID() string {
	return c.eventpopRoleID
}

// Get DATABASE_PATH env, default to ./sqlite.db
func (c *Config) GetDatabasePath() string {
	return c.databasePath
}

// Get BACKUP_DIR env, default to ./backups
func (c *Config) GetBackupDir() string {
	return c.backupDir
}

// Get EVENT_CONFIG env, default to ./event.yaml
func (c *Config) GetEventConfigPath() string {
	return c.eventConfigPath
}

// Get METRIC_COLLECTION_INTERVAL env, default to 5s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}

// Get HTTP_RATE_LIMIT env in requests per second, default to 10
func (c *Config) GetHttpRateLimit() float64 {
	return c.httpRateLimit
}
