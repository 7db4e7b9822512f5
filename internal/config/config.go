package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "WEEKLYOPS_CONFIG"
	canvasBaseEnv   = "CANVAS_BASE_URL"
	cookieFileEnv   = "CANVAS_COOKIE_FILE"
	snapshotDirEnv  = "SNAPSHOT_DIR"
	journalPathEnv  = "JOURNAL_PATH"
	logLevelEnv     = "LOG_LEVEL"

	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Canvas        CanvasConfig       `yaml:"canvas"`
	Snapshots     SnapshotConfig     `yaml:"snapshots"`
	Backfill      BackfillConfig     `yaml:"backfill"`
	Journal       JournalConfig      `yaml:"journal"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// CanvasConfig describes the upstream business-management host and the
// browser-exported session used to reach it.
type CanvasConfig struct {
	BaseURL           string          `yaml:"baseUrl"`
	CookieFile        string          `yaml:"cookieFile"`
	RequiredCookies   []string        `yaml:"requiredCookies"`
	CampaignIDs       []int           `yaml:"campaignIds"`
	Timeout           time.Duration   `yaml:"timeout"`
	RequestsPerSecond float64         `yaml:"requestsPerSecond"`
	UserAgent         string          `yaml:"userAgent"`
	DiagnosticsDir    string          `yaml:"diagnosticsDir"`
	BrandPrefix       string          `yaml:"brandPrefix"`
	Endpoints         EndpointsConfig `yaml:"endpoints"`
}

// EndpointsConfig holds report paths relative to the Canvas base URL.
type EndpointsConfig struct {
	ConversionForm   string `yaml:"conversionForm"`
	ConversionExport string `yaml:"conversionExport"`
	MarketingROI     string `yaml:"marketingRoi"`
	LocationRPA      string `yaml:"locationRpa"`
	LocationSales    string `yaml:"locationSales"`
	Appointments     string `yaml:"appointments"`
	Jobs             string `yaml:"jobs"`
}

// SnapshotConfig points at the directory holding the per-domain Parquet files.
type SnapshotConfig struct {
	Dir string `yaml:"dir"`
}

// BackfillConfig tunes the missing-week reconciliation.
type BackfillConfig struct {
	LookbackWeeks int            `yaml:"lookbackWeeks"`
	Timezone      string         `yaml:"timezone"`
	location      *time.Location `yaml:"-"`
}

// Location resolves the timezone "today" is evaluated in.
func (b BackfillConfig) Location() *time.Location {
	if b.location != nil {
		return b.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// JournalConfig points at the SQLite file recording backfill runs.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines when watch mode runs.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken   string `yaml:"botToken"`
	ChatID     string `yaml:"chatId"`
	APIBaseURL string `yaml:"apiBaseUrl"`
}

// Enabled reports whether both the token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Load reads YAML configuration from WEEKLYOPS_CONFIG (if set) and applies
// environment overrides.
func Load() Config {
	return LoadFrom(os.Getenv(configPathEnv))
}

// LoadFrom is Load with an explicit file path. An empty path uses defaults.
func LoadFrom(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg, err := Parse(raw)
			if err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezones()

	return cfg
}

// Parse decodes a YAML document without applying defaults.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(canvasBaseEnv); v != "" {
		c.Canvas.BaseURL = v
	}

	if v := os.Getenv(cookieFileEnv); v != "" {
		c.Canvas.CookieFile = v
	}

	if v := os.Getenv(snapshotDirEnv); v != "" {
		c.Snapshots.Dir = v
	}

	if v := os.Getenv(journalPathEnv); v != "" {
		c.Journal.Path = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezones() {
	c.Backfill.location = resolveLocation(c.Backfill.Timezone)
	c.Scheduler.location = resolveLocation(c.Scheduler.Timezone)
}

func resolveLocation(tz string) *time.Location {
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	return loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	base.Canvas = mergeCanvas(base.Canvas, override.Canvas)

	if override.Snapshots.Dir != "" {
		base.Snapshots.Dir = override.Snapshots.Dir
	}

	if override.Backfill.LookbackWeeks > 0 {
		base.Backfill.LookbackWeeks = override.Backfill.LookbackWeeks
	}
	if override.Backfill.Timezone != "" {
		base.Backfill.Timezone = override.Backfill.Timezone
	}

	if override.Journal.Path != "" {
		base.Journal.Path = override.Journal.Path
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.APIBaseURL != "" {
		base.Notifications.Telegram.APIBaseURL = override.Notifications.Telegram.APIBaseURL
	}

	return base
}

func mergeCanvas(base, override CanvasConfig) CanvasConfig {
	if override.BaseURL != "" {
		base.BaseURL = override.BaseURL
	}
	if override.CookieFile != "" {
		base.CookieFile = override.CookieFile
	}
	if len(override.RequiredCookies) > 0 {
		base.RequiredCookies = override.RequiredCookies
	}
	if len(override.CampaignIDs) > 0 {
		base.CampaignIDs = override.CampaignIDs
	}
	if override.Timeout > 0 {
		base.Timeout = override.Timeout
	}
	if override.RequestsPerSecond > 0 {
		base.RequestsPerSecond = override.RequestsPerSecond
	}
	if override.UserAgent != "" {
		base.UserAgent = override.UserAgent
	}
	if override.DiagnosticsDir != "" {
		base.DiagnosticsDir = override.DiagnosticsDir
	}
	if override.BrandPrefix != "" {
		base.BrandPrefix = override.BrandPrefix
	}

	ep, o := &base.Endpoints, override.Endpoints
	for _, pair := range []struct {
		dst *string
		src string
	}{
		{&ep.ConversionForm, o.ConversionForm},
		{&ep.ConversionExport, o.ConversionExport},
		{&ep.MarketingROI, o.MarketingROI},
		{&ep.LocationRPA, o.LocationRPA},
		{&ep.LocationSales, o.LocationSales},
		{&ep.Appointments, o.Appointments},
		{&ep.Jobs, o.Jobs},
	} {
		if pair.src != "" {
			*pair.dst = pair.src
		}
	}

	return base
}

// Default returns the built-in configuration with timezones bound.
func Default() Config {
	cfg := defaultConfig()
	cfg.bindTimezones()
	return cfg
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Canvas: CanvasConfig{
			BaseURL:           "https://canvas.artofdrawers.com",
			CookieFile:        "canvas_cookies.json",
			RequiredCookies:   []string{"PHPSESSID", "username"},
			CampaignIDs:       []int{62, 59, 21, 63, 64, 60, 61},
			Timeout:           60 * time.Second,
			RequestsPerSecond: 2,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
			DiagnosticsDir:    os.TempDir(),
			BrandPrefix:       "Art of Drawers",
			Endpoints: EndpointsConfig{
				ConversionForm:   "/scripts/lead-to-appointment-conversion/index.html",
				ConversionExport: "/scripts/report_as_spreadsheet.html?report=report_lead_to_appointment_conversion",
				MarketingROI:     "/scripts/marketing_roi.html",
				LocationRPA:      "/scripts/location_rankings.html?metric=rpa",
				LocationSales:    "/scripts/location_rankings.html?metric=sales",
				Appointments:     "/scripts/future_appointments.html",
				Jobs:             "/listjobs.html",
			},
		},
		Snapshots: SnapshotConfig{Dir: "Master_Data"},
		Backfill:  BackfillConfig{LookbackWeeks: 12, Timezone: "America/New_York"},
		Journal:   JournalConfig{Path: "Master_Data/runs.db"},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * 1", Timezone: "America/New_York"},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{APIBaseURL: "https://api.telegram.org"},
		},
	}
}
