package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	PublicURL         string        `mapstructure:"public_url" yaml:"public_url"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// RoomCapacity caps members per room. Zero means unbounded.
	RoomCapacity int `mapstructure:"room_capacity" yaml:"room_capacity"`
	// RoomIdleTimeout destroys rooms with no activity. Zero disables.
	RoomIdleTimeout time.Duration `mapstructure:"room_idle_timeout" yaml:"room_idle_timeout"`
	// MessageRateLimit caps update/hit messages per connection per
	// minute. Zero disables.
	MessageRateLimit int `mapstructure:"message_rate_limit" yaml:"message_rate_limit"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		PublicURL:         "http://localhost:8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		RoomCapacity:      2,
		RoomIdleTimeout:   10 * time.Minute,
		MessageRateLimit:  1200,
	}
}
