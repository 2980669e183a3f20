package profile

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable alarmbot reads.
const EnvPrefix = "ALARMBOT"

// Profile is the configuration to start alarmbot.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where alarmbot stores its alarms
	DSN string
	// Driver is the storage driver (sqlite, postgres, bolt or memory)
	Driver string
	// Version is the current version of alarmbot
	Version string

	// Scheduler
	TickInterval time.Duration // ALARMBOT_TICK_INTERVAL (default: 1s)

	// Alarm side effects
	RingCommand      string // ALARMBOT_RING_COMMAND, empty rings the terminal bell
	VoiceCommand     string // ALARMBOT_VOICE_COMMAND, empty disables voice input
	NotifyCommand    string // ALARMBOT_NOTIFY_COMMAND (default: notify-send)
	NotifyPermission string // ALARMBOT_NOTIFY_PERMISSION: unknown, granted or denied
	WebhookURL       string // ALARMBOT_WEBHOOK_URL
	WebhookSecret    string // ALARMBOT_WEBHOOK_SECRET

	// HTTP API
	ChatRateLimit float64 // ALARMBOT_CHAT_RATE_LIMIT, requests per second per client
	ChatRateBurst int     // ALARMBOT_CHAT_RATE_BURST
}

// Defaults for the optional settings.
const (
	DefaultTickInterval  = time.Second
	DefaultNotifyCommand = "notify-send"
	DefaultChatRateLimit = 5.0
	DefaultChatRateBurst = 10
)

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// SetDefaults registers the default of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("mode", "dev")
	v.SetDefault("addr", "")
	v.SetDefault("port", 8081)
	v.SetDefault("driver", "sqlite")
	v.SetDefault("tick-interval", DefaultTickInterval)
	v.SetDefault("notify-command", DefaultNotifyCommand)
	v.SetDefault("notify-permission", "unknown")
	v.SetDefault("chat-rate-limit", DefaultChatRateLimit)
	v.SetDefault("chat-rate-burst", DefaultChatRateBurst)
}

// NewViper returns a viper instance that reads ALARMBOT_* variables, with
// dashes in keys mapped to underscores.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// FromViper builds a profile from the settings in v.
func FromViper(v *viper.Viper) *Profile {
	return &Profile{
		Mode:             v.GetString("mode"),
		Addr:             v.GetString("addr"),
		Port:             v.GetInt("port"),
		Data:             v.GetString("data"),
		DSN:              v.GetString("dsn"),
		Driver:           v.GetString("driver"),
		TickInterval:     v.GetDuration("tick-interval"),
		RingCommand:      v.GetString("ring-command"),
		VoiceCommand:     v.GetString("voice-command"),
		NotifyCommand:    v.GetString("notify-command"),
		NotifyPermission: v.GetString("notify-permission"),
		WebhookURL:       v.GetString("webhook-url"),
		WebhookSecret:    v.GetString("webhook-secret"),
		ChatRateLimit:    v.GetFloat64("chat-rate-limit"),
		ChatRateBurst:    v.GetInt("chat-rate-burst"),
	}
}

// Logger returns the stderr logger for the profile's mode.
func (p *Profile) Logger() *slog.Logger {
	return p.LoggerTo(os.Stderr)
}

// LoggerTo returns a logger writing to w: text at debug level in dev, JSON at
// info level otherwise.
func (p *Profile) LoggerTo(w io.Writer) *slog.Logger {
	if p.IsDev() {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	switch p.Driver {
	case "sqlite", "bolt", "memory":
	case "postgres":
		if p.DSN == "" {
			return errors.New("postgres driver requires a dsn")
		}
	default:
		return errors.Errorf("unknown driver %q: use sqlite, postgres, bolt or memory", p.Driver)
	}

	if p.TickInterval <= 0 {
		p.TickInterval = DefaultTickInterval
	}
	if p.ChatRateLimit <= 0 {
		p.ChatRateLimit = DefaultChatRateLimit
	}
	if p.ChatRateBurst <= 0 {
		p.ChatRateBurst = DefaultChatRateBurst
	}

	// The memory driver keeps nothing on disk.
	if p.Driver == "memory" {
		return nil
	}

	if p.Data == "" {
		if p.Mode == "prod" {
			p.Data = defaultProdDataDir()
		} else {
			p.Data = "."
		}
	}
	if p.Mode == "prod" {
		if _, err := os.Stat(p.Data); os.IsNotExist(err) {
			if err := os.MkdirAll(p.Data, 0770); err != nil {
				slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
				return err
			}
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.DSN == "" {
		switch p.Driver {
		case "sqlite":
			p.DSN = filepath.Join(dataDir, fmt.Sprintf("alarmbot_%s.db", p.Mode))
		case "bolt":
			p.DSN = filepath.Join(dataDir, fmt.Sprintf("alarmbot_%s.bolt", p.Mode))
		}
	}

	return nil
}

func defaultProdDataDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("ProgramData"), "alarmbot")
	}
	return "/var/opt/alarmbot"
}
