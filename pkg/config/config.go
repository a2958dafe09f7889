package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Flags holds parsed command-line flag values and which were set.
type Flags struct {
	Addr   string
	DB     string
	Config string
	Set    map[string]bool
}

// Effective is the merged config the server runs with, plus where the
// governing values came from ("flags", "env", "config" or "defaults").
type Effective struct {
	Config *Config
	Addr   string
	DBPath string
	Source string
}

// ParseCommandFlags parses command-line flags and records which were set
// explicitly so they can win over file and env values.
func ParseCommandFlags() Flags {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	dbPtr := flag.String("db", "./.database", "Pebble DB path")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return Flags{Addr: *addrPtr, DB: *dbPtr, Config: *cfgPtr, Set: set}
}

// Load reads and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyEnv overlays SOCIALSD_* environment variables onto cfg. Returns true
// when at least one variable was applied.
func applyEnv(cfg *Config) bool {
	used := false
	if v := os.Getenv("SOCIALSD_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		if ok {
			cfg.Server.Address = host
			if p, err := strconv.Atoi(port); err == nil {
				cfg.Server.Port = p
			}
		} else {
			cfg.Server.Address = v
		}
		used = true
	}
	if v := os.Getenv("SOCIALSD_DB_PATH"); v != "" {
		cfg.Server.DBPath = v
		used = true
	}
	if v := os.Getenv("SOCIALSD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
		used = true
	}
	if v := os.Getenv("SOCIALSD_ALLOWED_ORIGINS"); v != "" {
		cfg.Security.CORS.AllowedOrigins = splitList(v)
		used = true
	}
	if v := os.Getenv("SOCIALSD_BACKEND_KEYS"); v != "" {
		cfg.Security.APIKeys.Backend = splitList(v)
		used = true
	}
	if v := os.Getenv("SOCIALSD_FRONTEND_KEYS"); v != "" {
		cfg.Security.APIKeys.Frontend = splitList(v)
		used = true
	}
	if v := os.Getenv("SOCIALSD_ALLOW_UNAUTH"); v != "" {
		cfg.Security.APIKeys.AllowUnauth = v == "1" || strings.EqualFold(v, "true")
		used = true
	}
	return used
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// LoadEffective merges config file, environment and flags (flags win) into
// the Effective config used by the running server. A missing config file is
// not an error; defaults and env still apply.
func LoadEffective(flags Flags) (Effective, error) {
	cfg := &Config{}
	source := "defaults"

	switch c, err := Load(flags.Config); {
	case err == nil:
		cfg = c
		source = "config"
	case os.IsNotExist(err) && !flags.Set["config"]:
		// missing default-path config is fine; defaults and env apply
	default:
		// an explicitly named config file must exist and parse
		return Effective{}, fmt.Errorf("config file %s: %w", flags.Config, err)
	}

	if applyEnv(cfg) {
		source = "env"
	}

	addr := cfg.Addr()
	if cfg.Server.Address == "" && cfg.Server.Port == 0 {
		addr = flags.Addr
	}
	if flags.Set["addr"] {
		addr = flags.Addr
		source = "flags"
	}

	dbPath := cfg.Server.DBPath
	if dbPath == "" || flags.Set["db"] {
		dbPath = flags.DB
		if flags.Set["db"] {
			source = "flags"
		}
	}

	return Effective{Config: cfg, Addr: addr, DBPath: dbPath, Source: source}, nil
}
