package config

import (
	"encoding/base64"
	"fmt"
	"time"
)

const (
	DefaultPremiumPeriod    = 30 * 24 * time.Hour
	DefaultEditWindow       = 3 * time.Minute
	DefaultMessageRetention = 24 * time.Hour
	DefaultSweepInterval    = time.Hour

	DefaultPremiumSweepBatch = 100
	DefaultMessageSweepBatch = 1000

	DefaultFreeRoomCapacity    = 10
	DefaultPremiumRoomCapacity = 100

	DefaultMessagePageSize = 100

	DefaultVerificationCodeTTL = 15 * time.Minute
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether outbound email is configured at all.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

type Config struct {
	ServerAddr     string
	DatabaseDSN    string
	MigrationsURL  string
	SigningKey     []byte
	AllowedOrigins []string
	SMTP           SMTPConfig

	PremiumPeriod    time.Duration
	EditWindow       time.Duration
	MessageRetention time.Duration
	SweepInterval    time.Duration

	PremiumSweepBatch int
	MessageSweepBatch int

	FreeRoomCapacity    int
	PremiumRoomCapacity int

	MessagePageSize int

	VerificationCodeTTL time.Duration
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64Secret)
}

func NewConfig(serverAddr, databaseDSN, base64Secret string, allowedOrigins []string, smtp SMTPConfig) (*Config, error) {
	if serverAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if databaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if base64Secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}

	signingKey, err := decodeSigningSecret(base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	return &Config{
		ServerAddr:     serverAddr,
		DatabaseDSN:    databaseDSN,
		MigrationsURL:  "file://migrations",
		SigningKey:     signingKey,
		AllowedOrigins: allowedOrigins,
		SMTP:           smtp,

		PremiumPeriod:    DefaultPremiumPeriod,
		EditWindow:       DefaultEditWindow,
		MessageRetention: DefaultMessageRetention,
		SweepInterval:    DefaultSweepInterval,

		PremiumSweepBatch: DefaultPremiumSweepBatch,
		MessageSweepBatch: DefaultMessageSweepBatch,

		FreeRoomCapacity:    DefaultFreeRoomCapacity,
		PremiumRoomCapacity: DefaultPremiumRoomCapacity,

		MessagePageSize: DefaultMessagePageSize,

		VerificationCodeTTL: DefaultVerificationCodeTTL,
	}, nil
}

// RoomCapacity maps a room type to its participant cap.
func (c *Config) RoomCapacity(roomType string) int {
	if roomType == "premium" {
		return c.PremiumRoomCapacity
	}
	return c.FreeRoomCapacity
}
