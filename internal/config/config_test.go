package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(cookieFileEnv, "")
	t.Setenv(snapshotDirEnv, "")

	cfg := Load()

	if cfg.Canvas.BaseURL != "https://canvas.artofdrawers.com" {
		t.Fatalf("unexpected base url: %s", cfg.Canvas.BaseURL)
	}
	if len(cfg.Canvas.RequiredCookies) != 2 {
		t.Fatalf("expected two required cookies, got %v", cfg.Canvas.RequiredCookies)
	}
	if len(cfg.Canvas.CampaignIDs) != 7 {
		t.Fatalf("expected seven campaign ids, got %v", cfg.Canvas.CampaignIDs)
	}
	if cfg.Backfill.LookbackWeeks != 12 {
		t.Fatalf("unexpected lookback: %d", cfg.Backfill.LookbackWeeks)
	}
	if cfg.Backfill.Location() == nil || cfg.Scheduler.Location() == nil {
		t.Fatalf("timezones not bound")
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weeklyops.yaml")
	raw := []byte(`
logging:
  level: debug
canvas:
  cookieFile: /secrets/canvas_cookies.json
  campaignIds: [1, 2]
  timeout: 5s
  endpoints:
    marketingRoi: /custom/roi.html
backfill:
  lookbackWeeks: 20
  timezone: Not/AZone
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(snapshotDirEnv, "/data/snapshots")
	t.Setenv(cookieFileEnv, "")

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %s", cfg.Logging.Level)
	}
	if cfg.Canvas.CookieFile != "/secrets/canvas_cookies.json" {
		t.Fatalf("unexpected cookie file: %s", cfg.Canvas.CookieFile)
	}
	if got := cfg.Canvas.CampaignIDs; len(got) != 2 || got[0] != 1 {
		t.Fatalf("unexpected campaigns: %v", got)
	}
	if cfg.Canvas.Timeout != 5*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.Canvas.Timeout)
	}
	if cfg.Canvas.Endpoints.MarketingROI != "/custom/roi.html" {
		t.Fatalf("endpoint override lost: %s", cfg.Canvas.Endpoints.MarketingROI)
	}
	if cfg.Canvas.Endpoints.ConversionForm == "" {
		t.Fatalf("default endpoint dropped by merge")
	}
	if cfg.Snapshots.Dir != "/data/snapshots" {
		t.Fatalf("env override ignored: %s", cfg.Snapshots.Dir)
	}
	if cfg.Backfill.LookbackWeeks != 20 {
		t.Fatalf("unexpected lookback: %d", cfg.Backfill.LookbackWeeks)
	}
	if cfg.Backfill.Location().String() != "UTC" {
		t.Fatalf("unknown timezone should fall back to UTC, got %s", cfg.Backfill.Location())
	}
}

func TestLoadIgnoresBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte("canvas: [unterminated"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()
	if cfg.Canvas.BaseURL == "" {
		t.Fatalf("defaults should survive a broken file")
	}
}

func TestTelegramEnabled(t *testing.T) {
	t.Parallel()

	if (TelegramConfig{BotToken: "x"}).Enabled() {
		t.Fatalf("chat id is required")
	}
	if !(TelegramConfig{BotToken: "x", ChatID: "1"}).Enabled() {
		t.Fatalf("expected enabled")
	}
}
