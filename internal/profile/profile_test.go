package profile

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	p := FromViper(NewViper())

	assert.Equal(t, "dev", p.Mode)
	assert.Equal(t, 8081, p.Port)
	assert.Equal(t, "sqlite", p.Driver)
	assert.Equal(t, time.Second, p.TickInterval)
	assert.Equal(t, "notify-send", p.NotifyCommand)
	assert.Equal(t, "unknown", p.NotifyPermission)
	assert.Equal(t, DefaultChatRateLimit, p.ChatRateLimit)
	assert.Equal(t, DefaultChatRateBurst, p.ChatRateBurst)
	assert.Empty(t, p.VoiceCommand)
}

func TestFromViper_Env(t *testing.T) {
	t.Setenv("ALARMBOT_DRIVER", "bolt")
	t.Setenv("ALARMBOT_TICK_INTERVAL", "250ms")
	t.Setenv("ALARMBOT_VOICE_COMMAND", "listen-once")
	t.Setenv("ALARMBOT_WEBHOOK_URL", "http://localhost:9000/hook")
	t.Setenv("ALARMBOT_CHAT_RATE_BURST", "3")

	p := FromViper(NewViper())

	assert.Equal(t, "bolt", p.Driver)
	assert.Equal(t, 250*time.Millisecond, p.TickInterval)
	assert.Equal(t, "listen-once", p.VoiceCommand)
	assert.Equal(t, "http://localhost:9000/hook", p.WebhookURL)
	assert.Equal(t, 3, p.ChatRateBurst)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		profile Profile
		wantDSN string
		wantErr bool
	}{
		{"sqlite default dsn", Profile{Mode: "dev", Driver: "sqlite", Data: dir}, filepath.Join(dir, "alarmbot_dev.db"), false},
		{"bolt default dsn", Profile{Mode: "dev", Driver: "bolt", Data: dir}, filepath.Join(dir, "alarmbot_dev.bolt"), false},
		{"unknown mode becomes demo", Profile{Mode: "staging", Driver: "sqlite", Data: dir}, filepath.Join(dir, "alarmbot_demo.db"), false},
		{"explicit dsn kept", Profile{Mode: "dev", Driver: "sqlite", Data: dir, DSN: "/tmp/x.db"}, "/tmp/x.db", false},
		{"memory needs no data dir", Profile{Mode: "dev", Driver: "memory", Data: filepath.Join(dir, "missing")}, "", false},
		{"postgres requires dsn", Profile{Mode: "dev", Driver: "postgres", Data: dir}, "", true},
		{"unknown driver", Profile{Mode: "dev", Driver: "mysql", Data: dir}, "", true},
		{"missing data dir", Profile{Mode: "dev", Driver: "sqlite", Data: filepath.Join(dir, "missing")}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.profile
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDSN, p.DSN)
			assert.Equal(t, DefaultTickInterval, p.TickInterval)
		})
	}
}

func TestIsDev(t *testing.T) {
	assert.True(t, (&Profile{Mode: "dev"}).IsDev())
	assert.True(t, (&Profile{Mode: "demo"}).IsDev())
	assert.False(t, (&Profile{Mode: "prod"}).IsDev())
}

func TestLoggerTo(t *testing.T) {
	var dev, prod bytes.Buffer

	(&Profile{Mode: "dev"}).LoggerTo(&dev).Debug("tick", "count", 1)
	assert.Contains(t, dev.String(), "msg=tick count=1")

	logger := (&Profile{Mode: "prod"}).LoggerTo(&prod)
	logger.Debug("hidden")
	logger.Info("alarm fired", "id", 7)
	assert.NotContains(t, prod.String(), "hidden")
	assert.Contains(t, prod.String(), `"msg":"alarm fired","id":7`)
}
