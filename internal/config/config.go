package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fleetline/internal/domain"
	"fleetline/internal/kv"
)

// Config models fleet.yml.
type Config struct {
	Roster  []RosterEntry `yaml:"roster"`
	Routes  []RouteEntry  `yaml:"routes"`
	Storage Storage       `yaml:"storage"`
	Server  Server        `yaml:"server"`
	Log     Log           `yaml:"log"`
}

// RosterEntry is one fixed login. Passwords are compared as plain text.
type RosterEntry struct {
	ID       string      `yaml:"id"`
	Email    string      `yaml:"email"`
	Password string      `yaml:"password"`
	Name     string      `yaml:"name"`
	Role     domain.Role `yaml:"role"`
}

// RouteEntry maps a named route to the roles allowed on it. Empty roles admit
// any signed-in user; public routes need no user at all. Hidden routes gate
// actions and are left out of navigation.
type RouteEntry struct {
	Name   string        `yaml:"name"`
	Path   string        `yaml:"path"`
	Roles  []domain.Role `yaml:"roles,omitempty"`
	Public bool          `yaml:"public,omitempty"`
	Hidden bool          `yaml:"hidden,omitempty"`
}

type Storage struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
	// OnCorrupt is fail or seed.
	OnCorrupt string `yaml:"on_corrupt"`
}

type Server struct {
	Addr     string        `yaml:"addr"`
	BasePath string        `yaml:"base_path"`
	JWTTTL   time.Duration `yaml:"jwt_ttl"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

const (
	OnCorruptFail = "fail"
	OnCorruptSeed = "seed"
)

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if len(c.Roster) == 0 {
		return fmt.Errorf("config.roster must list at least one user")
	}
	emails := map[string]bool{}
	ids := map[string]bool{}
	for i, u := range c.Roster {
		if strings.TrimSpace(u.Email) == "" {
			return fmt.Errorf("roster entry %d has empty email", i)
		}
		if u.ID == "" {
			return fmt.Errorf("roster entry %s has empty id", u.Email)
		}
		if !u.Role.Valid() {
			return fmt.Errorf("roster entry %s has invalid role %q", u.Email, u.Role)
		}
		if emails[u.Email] {
			return fmt.Errorf("roster email %s listed twice", u.Email)
		}
		if ids[u.ID] {
			return fmt.Errorf("roster id %s listed twice", u.ID)
		}
		emails[u.Email] = true
		ids[u.ID] = true
	}
	paths := map[string]bool{}
	names := map[string]bool{}
	for _, r := range c.Routes {
		if r.Name == "" || r.Path == "" {
			return fmt.Errorf("route entries need name and path")
		}
		if !strings.HasPrefix(r.Path, "/") {
			return fmt.Errorf("route %s path must start with /", r.Name)
		}
		if paths[r.Path] {
			return fmt.Errorf("route path %s listed twice", r.Path)
		}
		if names[r.Name] {
			return fmt.Errorf("route name %s listed twice", r.Name)
		}
		paths[r.Path] = true
		names[r.Name] = true
		for _, role := range r.Roles {
			if !role.Valid() {
				return fmt.Errorf("route %s references unknown role %q", r.Name, role)
			}
		}
		if r.Public && len(r.Roles) > 0 {
			return fmt.Errorf("public route %s cannot restrict roles", r.Name)
		}
	}
	if c.Storage.Driver != "" && !slices.Contains(kv.Drivers, c.Storage.Driver) {
		return fmt.Errorf("config.storage.driver %q not supported", c.Storage.Driver)
	}
	if (c.Storage.Driver == kv.DriverRedis || c.Storage.Driver == kv.DriverPostgres) && c.Storage.DSN == "" {
		return fmt.Errorf("config.storage.dsn is required for driver %s", c.Storage.Driver)
	}
	switch c.Storage.OnCorrupt {
	case "", OnCorruptFail, OnCorruptSeed:
	default:
		return fmt.Errorf("config.storage.on_corrupt must be %s or %s", OnCorruptFail, OnCorruptSeed)
	}
	if c.Server.JWTTTL < 0 {
		return fmt.Errorf("config.server.jwt_ttl must not be negative")
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "fleet.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with fleet config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the default config when the file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the built-in Config.
func Default() *Config {
	cfg, err := FromYAML([]byte(defaultTemplate))
	if err != nil {
		panic(fmt.Sprintf("default config invalid: %v", err))
	}
	return cfg
}

// FromYAML parses and validates config from raw YAML bytes. Sections left out
// of the document fall back to the defaults.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if len(cfg.Roster) == 0 || len(cfg.Routes) == 0 {
		var def Config
		if err := yaml.Unmarshal([]byte(defaultTemplate), &def); err != nil {
			return nil, err
		}
		if len(cfg.Roster) == 0 {
			cfg.Roster = def.Roster
		}
		if len(cfg.Routes) == 0 {
			cfg.Routes = def.Routes
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

func (c *Config) applyDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.OnCorrupt == "" {
		c.Storage.OnCorrupt = OnCorruptFail
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8080"
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = "/v0"
	}
	if c.Server.JWTTTL == 0 {
		c.Server.JWTTTL = 12 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

const defaultTemplate = `roster:
  - id: "1"
    email: admin@example-domain
    password: admin123
    name: Admin User
    role: Admin
  - id: "2"
    email: inspector@example-domain
    password: inspect123
    name: Inspector Smith
    role: Inspector
  - id: "3"
    email: engineer@example-domain
    password: engine123
    name: Engineer Johnson
    role: Engineer

routes:
  - name: login
    path: /login
    public: true
  - name: dashboard
    path: /
    roles: [Admin, Inspector, Engineer]
  - name: ships
    path: /ships
    roles: [Admin, Inspector, Engineer]
  - name: components
    path: /components
    roles: [Admin, Engineer]
  - name: jobs
    path: /jobs
    roles: [Admin, Engineer]
  - name: calendar
    path: /calendar
  - name: ships.manage
    path: /ships/manage
    roles: [Admin]
    hidden: true

storage:
  driver: sqlite
  on_corrupt: fail

server:
  addr: 127.0.0.1:8080
  base_path: /v0
  jwt_ttl: 12h

log:
  level: info
  json: false
`
