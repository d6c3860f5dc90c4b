// Package config loads the server configuration from a yaml file, applies
// environment overrides, and lets explicit command-line flags win over
// both.
package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config mirrors the yaml config file.
type Config struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
		TLS     struct {
			CertFile string `yaml:"cert_file"`
			KeyFile  string `yaml:"key_file"`
		} `yaml:"tls"`
	} `yaml:"server"`
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
	Security struct {
		// TokenSecret signs session tokens. Mandatory outside tests.
		TokenSecret string `yaml:"token_secret"`
		CORS        struct {
			AllowedOrigins []string `yaml:"allowed_origins"`
		} `yaml:"cors"`
		RateLimit struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
		IPWhitelist []string `yaml:"ip_whitelist"`
	} `yaml:"security"`
	Presence struct {
		// HeartbeatSeconds is the liveness write period; consumers treat a
		// profile offline past twice this age.
		HeartbeatSeconds int `yaml:"heartbeat_seconds"`
	} `yaml:"presence"`
	Census struct {
		Enabled bool   `yaml:"enabled"`
		Cron    string `yaml:"cron"`
	} `yaml:"census"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Addr returns the listen address, combining address and port when both
// are set.
func (c *Config) Addr() string {
	if c.Server.Address == "" && c.Server.Port == 0 {
		return ""
	}
	host := c.Server.Address
	if c.Server.Port != 0 {
		return net.JoinHostPort(host, strconv.Itoa(c.Server.Port))
	}
	return host
}

// HeartbeatInterval returns the configured presence period, defaulting to
// the reference 25s.
func (c *Config) HeartbeatInterval() time.Duration {
	if c.Presence.HeartbeatSeconds <= 0 {
		return 25 * time.Second
	}
	return time.Duration(c.Presence.HeartbeatSeconds) * time.Second
}

// Load reads and parses the yaml config at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &c, nil
}

// Effective is the merged result of file + env + flags, with the resolved
// listen address and db path pulled out for convenience.
type Effective struct {
	Config *Config
	Addr   string
	DBPath string
	// Source summarizes where values came from: "flags", "env", "config".
	Source string
}

// ParseCommandFlags registers and parses the server flags. It returns the
// raw values plus a set recording which flags the user passed explicitly.
func ParseCommandFlags() (addr, dbPath, cfgPath string, set map[string]bool) {
	a := flag.String("addr", ":8080", "listen address")
	d := flag.String("db", "./cruise-data", "pebble database path")
	c := flag.String("config", "", "path to yaml config file")
	flag.Parse()
	set = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return *a, *d, *c, set
}

// ResolveConfigPath picks the config file path: explicit flag wins, then
// CRUISE_CONFIG, then the default ./cruise.yaml if it exists.
func ResolveConfigPath(flagVal string, flagSet bool) string {
	if flagSet && flagVal != "" {
		return flagVal
	}
	if v := strings.TrimSpace(os.Getenv("CRUISE_CONFIG")); v != "" {
		return v
	}
	if _, err := os.Stat("cruise.yaml"); err == nil {
		return "cruise.yaml"
	}
	return flagVal
}

// LoadEffective merges config file and environment. Flags are applied by
// the caller on top (flags win).
func LoadEffective(cfgPath string) (*Config, bool, error) {
	cfg := &Config{}
	if cfgPath != "" {
		loaded, err := Load(cfgPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, false, err
			}
		} else {
			cfg = loaded
		}
	}
	envUsed := applyEnv(cfg)
	return cfg, envUsed, nil
}

func applyEnv(c *Config) bool {
	used := false
	if v := os.Getenv("CRUISE_ADDR"); v != "" {
		if host, port, err := net.SplitHostPort(v); err == nil {
			c.Server.Address = host
			if p, perr := strconv.Atoi(port); perr == nil {
				c.Server.Port = p
			}
		} else {
			c.Server.Address = v
		}
		used = true
	}
	if v := os.Getenv("CRUISE_DB_PATH"); v != "" {
		c.Storage.DBPath = v
		used = true
	}
	if v := os.Getenv("CRUISE_TOKEN_SECRET"); v != "" {
		c.Security.TokenSecret = v
		used = true
	}
	if v := os.Getenv("CRUISE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
		used = true
	}
	if v := os.Getenv("CRUISE_HEARTBEAT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Presence.HeartbeatSeconds = n
			used = true
		}
	}
	return used
}
