package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DISCORD_APP_TOKEN", "token-value")
	t.Setenv("DISCORD_CLIENT_ID", "client")
	t.Setenv("DISCORD_GUILD_ID", "guild")
}

func TestConfigDefaults(t *testing.T) {
	setRequiredEnv(t)
	for _, name := range []string{
		"PORT", "ID_TOKEN_SECRET", "ID_TOKEN_EXPIRE", "PUBLIC_URL", "GITHUB_CLIENT_ID",
		"GITHUB_CLIENT_SECRET", "DATABASE_PATH", "BACKUP_DIR", "EVENT_CONFIG",
		"METRIC_COLLECTION_INTERVAL", "HTTP_RATE_LIMIT", "EVENTPOP_EVENT_ID",
		"EVENTPOP_GATEWAY_URL", "EVENTPOP_PUBLIC_KEY", "EVENTPOP_ROLE_ID",
	} {
		t.Setenv(name, "")
	}

	c := NewConfig()
	if c.GetPort() != "8080" {
		t.Fatalf("port = %q", c.GetPort())
	}
	if c.GetIDTokenExpire() != time.Hour {
		t.Fatalf("id token expire = %v", c.GetIDTokenExpire())
	}
	if c.GetPublicURL() != "http://localhost:8080" {
		t.Fatalf("public url = %q", c.GetPublicURL())
	}
	if c.GetMetricCollectionInterval() != 5*time.Second {
		t.Fatalf("metric interval = %v", c.GetMetricCollectionInterval())
	}
	if c.GetEventpopEventID() != 13449 || c.GetEventpopRoleID() != "" {
		t.Fatalf("eventpop = %d %q", c.GetEventpopEventID(), c.GetEventpopRoleID())
	}
	if c.GetHttpRateLimit() != 10 {
		t.Fatalf("rate limit = %v", c.GetHttpRateLimit())
	}
	if c.GetDatabasePath() != "./sqlite.db" || c.GetBackupDir() != "backups" {
		t.Fatalf("unexpected paths %q %q", c.GetDatabasePath(), c.GetBackupDir())
	}
}

func TestConfigFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("PUBLIC_URL", "https://bot.example.com/")
	t.Setenv("ID_TOKEN_EXPIRE", "15m")
	t.Setenv("HTTP_RATE_LIMIT", "2.5")

	c := NewConfig()
	if c.GetPublicURL() != "https://bot.example.com" {
		t.Fatalf("public url = %q", c.GetPublicURL())
	}
	if c.GetIDTokenExpire() != 15*time.Minute {
		t.Fatalf("id token expire = %v", c.GetIDTokenExpire())
	}
	if c.GetHttpRateLimit() != 2.5 {
		t.Fatalf("rate limit = %v", c.GetHttpRateLimit())
	}
	if c.GetDiscordGuildID() != "guild" || c.GetDiscordClientId() != "client" {
		t.Fatalf("unexpected discord config")
	}
}

func TestLoadEventConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		ec, err := LoadEventConfig(filepath.Join(dir, "nope.yaml"))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(DefaultEventConfig(), ec); diff != "" {
			t.Fatalf("expected defaults (-want +got):\n%s", diff)
		}
	})

	t.Run("partial file", func(t *testing.T) {
		path := filepath.Join(dir, "event.yaml")
		if err := os.WriteFile(path, []byte("vote:\n  options: [\"1\", \"2\", \"3\"]\n  required: 1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		ec, err := LoadEventConfig(path)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"1", "2", "3"}, ec.Vote.Options); diff != "" {
			t.Fatalf("unexpected options (-want +got):\n%s", diff)
		}
		if ec.Vote.Required != 1 {
			t.Fatalf("required = %d", ec.Vote.Required)
		}
		if diff := cmp.Diff([]string{"A", "B", "C", "D"}, ec.Answer.Choices); diff != "" {
			t.Fatalf("answer choices should keep defaults (-want +got):\n%s", diff)
		}
		if !ec.IsVoteOption("3") || ec.IsVoteOption("4") {
			t.Fatalf("unexpected IsVoteOption result")
		}
	})

	t.Run("invalid", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("vote:\n  required: -1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadEventConfig(path); err == nil {
			t.Fatalf("expected an error for a negative required count")
		}
	})
}
