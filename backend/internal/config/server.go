package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix префикс переменных окружения
const EnvPrefix = "SOLAR"

// ServerConfig параметры процесса сервера
type ServerConfig struct {
	Addr       string
	HealthAddr string
	StaticDir  string
	Catalog    string

	TickRate       int
	BroadcastEvery int // Каждый N-й тик отправляет астероиды

	MaxConnsPerIP int
	InputRate     float64 // сообщений в секунду на соединение
	InputBurst    int

	// Эпоха для засева фаз орбит. Пустая строка означает текущее время.
	Epoch string
	Seed  uint64

	ShutdownTimeout time.Duration
	Verbose         bool
}

// SetDefaults регистрирует значения по умолчанию
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("health_addr", ":9090")
	v.SetDefault("static_dir", "")
	v.SetDefault("catalog", "")
	v.SetDefault("tick_rate", 30)
	v.SetDefault("broadcast_every", 3)
	v.SetDefault("max_conns_per_ip", 5)
	v.SetDefault("input_rate", 60.0)
	v.SetDefault("input_burst", 120)
	v.SetDefault("epoch", "")
	v.SetDefault("seed", uint64(42))
	v.SetDefault("shutdown_timeout", 5*time.Second)
	v.SetDefault("verbose", false)
}

// Load читает конфигурацию из viper и проверяет ее
func Load(v *viper.Viper) (ServerConfig, error) {
	cfg := ServerConfig{
		Addr:            v.GetString("addr"),
		HealthAddr:      v.GetString("health_addr"),
		StaticDir:       v.GetString("static_dir"),
		Catalog:         v.GetString("catalog"),
		TickRate:        v.GetInt("tick_rate"),
		BroadcastEvery:  v.GetInt("broadcast_every"),
		MaxConnsPerIP:   v.GetInt("max_conns_per_ip"),
		InputRate:       v.GetFloat64("input_rate"),
		InputBurst:      v.GetInt("input_burst"),
		Epoch:           v.GetString("epoch"),
		Seed:            v.GetUint64("seed"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		Verbose:         v.GetBool("verbose"),
	}

	if cfg.Addr == "" {
		return cfg, errors.New("addr is required")
	}
	if cfg.TickRate <= 0 {
		return cfg, fmt.Errorf("tick_rate must be positive, got %d", cfg.TickRate)
	}
	if cfg.BroadcastEvery <= 0 {
		cfg.BroadcastEvery = 1
	}
	if cfg.InputRate <= 0 || cfg.InputBurst <= 0 {
		return cfg, errors.New("input_rate and input_burst must be positive")
	}
	if _, err := cfg.EpochTime(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// EpochTime разбирает эпоху в формате RFC3339. Пустая строка дает текущее время.
func (c ServerConfig) EpochTime() (time.Time, error) {
	if c.Epoch == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, c.Epoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse epoch %q: %w", c.Epoch, err)
	}
	return t, nil
}
