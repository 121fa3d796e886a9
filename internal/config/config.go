package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	HTTPAddr          string        `mapstructure:"http_addr" yaml:"http_addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`

	Hostname           string `mapstructure:"hostname" yaml:"hostname"`
	ServerName         string `mapstructure:"server_name" yaml:"server_name"`
	PlayerLimit        int    `mapstructure:"player_limit" yaml:"player_limit"`
	SpectatorName      string `mapstructure:"spectator_name" yaml:"spectator_name"`
	BlackoutBackground string `mapstructure:"blackout_background" yaml:"blackout_background"`

	// Role passwords, plaintext or bcrypt hashes. Empty disables the role.
	ModPassword string `mapstructure:"mod_password" yaml:"mod_password"`
	CMPassword  string `mapstructure:"cm_password" yaml:"cm_password"`
	GMPassword  string `mapstructure:"gm_password" yaml:"gm_password"`

	ICFloodInterval time.Duration `mapstructure:"ic_flood_interval" yaml:"ic_flood_interval"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	MaxRecordBytes  int           `mapstructure:"max_record_bytes" yaml:"max_record_bytes"`

	DatabasePath   string `mapstructure:"database_path" yaml:"database_path"`
	CharactersPath string `mapstructure:"characters_path" yaml:"characters_path"`
	MusicPath      string `mapstructure:"music_path" yaml:"music_path"`
	AreasPath      string `mapstructure:"areas_path" yaml:"areas_path"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":27016",
		HTTPAddr:           ":27017",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           "info",
		LogFormat:          "console",
		Hostname:           "$H",
		ServerName:         "TsuserverDR",
		PlayerLimit:        100,
		SpectatorName:      "SPECTATOR",
		BlackoutBackground: "Blackout_HD",
		ICFloodInterval:    100 * time.Millisecond,
		IdleTimeout:        3 * time.Minute,
		MaxRecordBytes:     16 << 10,
		DatabasePath:       "tsuserver.db",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	setString(&c.Addr, other.Addr)
	setString(&c.HTTPAddr, other.HTTPAddr)
	setDuration(&c.ReadHeaderTimeout, other.ReadHeaderTimeout)
	setDuration(&c.ShutdownTimeout, other.ShutdownTimeout)
	setString(&c.LogLevel, other.LogLevel)
	setString(&c.LogFormat, other.LogFormat)
	setString(&c.Hostname, other.Hostname)
	setString(&c.ServerName, other.ServerName)
	if other.PlayerLimit != 0 {
		c.PlayerLimit = other.PlayerLimit
	}
	setString(&c.SpectatorName, other.SpectatorName)
	setString(&c.BlackoutBackground, other.BlackoutBackground)
	setString(&c.ModPassword, other.ModPassword)
	setString(&c.CMPassword, other.CMPassword)
	setString(&c.GMPassword, other.GMPassword)
	setDuration(&c.ICFloodInterval, other.ICFloodInterval)
	setDuration(&c.IdleTimeout, other.IdleTimeout)
	if other.MaxRecordBytes != 0 {
		c.MaxRecordBytes = other.MaxRecordBytes
	}
	setString(&c.DatabasePath, other.DatabasePath)
	setString(&c.CharactersPath, other.CharactersPath)
	setString(&c.MusicPath, other.MusicPath)
	setString(&c.AreasPath, other.AreasPath)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
