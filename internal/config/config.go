package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port         int
	NatsURL      string
	NatsToken    string
	DatabaseURL  string
	LogLevel     string
	GeminiAPIKey string
	FlashModel   string
	ProModel     string
	ArchiveDir   string

	SlackBotToken     string
	SlackAlertChannel string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string
	EmailTo      []string

	ReportConfigPath string
}

func Load() Config {
	return Config{
		Port:         envInt("PULSE_PORT", 8760),
		NatsURL:      envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:    envStr("NATS_TOKEN", ""),
		DatabaseURL:  envStr("DATABASE_URL", ""),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		GeminiAPIKey: envStr("GEMINI_API_KEY", ""),
		FlashModel:   envStr("PULSE_FLASH_MODEL", "gemini-flash-latest"),
		ProModel:     envStr("PULSE_PRO_MODEL", "gemini-pro-latest"),
		ArchiveDir:   envStr("PULSE_ARCHIVE_DIR", "webhook_logs"),

		SlackBotToken:     envStr("SLACK_BOT_TOKEN", ""),
		SlackAlertChannel: envStr("SLACK_ALERTS_CHANNEL", ""),

		SMTPHost:     envStr("SMTP_HOST", ""),
		SMTPPort:     envInt("SMTP_PORT", 587),
		SMTPUser:     envStr("SMTP_USER", ""),
		SMTPPassword: envStr("SMTP_PASSWORD", ""),
		EmailFrom:    envStr("EMAIL_FROM_ADDRESS", ""),
		EmailTo:      envList("EMAIL_TO_ADDRESSES"),

		ReportConfigPath: envStr("PULSE_REPORT_CONFIG", ""),
	}
}

// ReportFile is an optional YAML overlay for daily-report settings.
// Transport credentials stay in env vars; the file carries the parts
// operators change often.
type ReportFile struct {
	Recipients []string `yaml:"recipients"`
	Subject    string   `yaml:"subject"`
}

func LoadReportFile(path string) (ReportFile, error) {
	var rf ReportFile
	data, err := os.ReadFile(path)
	if err != nil {
		return rf, fmt.Errorf("read report config: %w", err)
	}
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return rf, fmt.Errorf("parse report config: %w", err)
	}
	return rf, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
