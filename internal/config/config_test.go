package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetline/internal/domain"
	"fleetline/internal/kv"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	require.Len(t, cfg.Roster, 3)
	assert.Equal(t, "admin@example-domain", cfg.Roster[0].Email)
	assert.Equal(t, domain.RoleAdmin, cfg.Roster[0].Role)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, OnCorruptFail, cfg.Storage.OnCorrupt)
	assert.Equal(t, 12*time.Hour, cfg.Server.JWTTTL)

	var jobs RouteEntry
	for _, r := range cfg.Routes {
		if r.Name == "jobs" {
			jobs = r
		}
	}
	assert.Equal(t, []domain.Role{domain.RoleAdmin, domain.RoleEngineer}, jobs.Roles)
}

func TestFromYAMLKeepsDefaultsForMissingSections(t *testing.T) {
	cfg, err := FromYAML([]byte("storage:\n  driver: memory\n"))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Len(t, cfg.Roster, 3)
	assert.NotEmpty(t, cfg.Routes)
	assert.Equal(t, "/v0", cfg.Server.BasePath)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"bad role": `roster:
  - {id: "1", email: a@x, password: p, role: Captain}`,
		"duplicate email": `roster:
  - {id: "1", email: a@x, password: p, role: Admin}
  - {id: "2", email: a@x, password: q, role: Engineer}`,
		"unknown driver":     "storage:\n  driver: etcd\n",
		"redis without dsn":  "storage:\n  driver: redis\n",
		"bad corrupt policy": "storage:\n  on_corrupt: ignore\n",
		"route role": `routes:
  - {name: jobs, path: /jobs, roles: [Pilot]}`,
		"public with roles": `routes:
  - {name: login, path: /login, public: true, roles: [Admin]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromYAML([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestValidateAcceptsEveryStorageDriver(t *testing.T) {
	for _, driver := range kv.Drivers {
		cfg := Default()
		cfg.Storage.Driver = driver
		cfg.Storage.DSN = "dsn://" + driver
		assert.NoError(t, cfg.Validate(), driver)
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOptional(dir)
	require.NoError(t, err)
	assert.Len(t, cfg.Roster, 3)

	_, err = Load(dir)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(Path(dir), []byte("log:\n  level: debug\n"), 0o644))
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}
