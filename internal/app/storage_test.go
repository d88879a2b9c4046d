package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolcrib-backend/internal/config"
)

const seedYAML = `
users:
  - {id: 1, name: Ana, email: ana@example.com, role: WORKER, workstation_id: 20}
facilities:
  - {id: 5, name: North Plant}
workplaces:
  - {id: 10, name: Assembly, facility_id: 5}
workstations:
  - {id: 20, workplace_id: 10}
tool_cribs:
  - {id: 30, name: Assembly Crib, workplace_id: 10}
tools:
  - {id: 40, name: Drill, price: "80.00", fine_amount: "10", category: NORMAL}
inventory:
  - {tool_crib_id: 30, tool_id: 40, total: 5, available: 5}
`

func TestOpenStorage(t *testing.T) {
	t.Run("memory with seed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.yaml")
		require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

		cfg := &config.Config{}
		cfg.Storage.Type = "memory"
		cfg.Storage.SeedFile = path

		st, err := OpenStorage(cfg, nil)
		require.NoError(t, err)
		defer st.Close()

		assert.NoError(t, st.Ping(context.Background()))
		inv, err := st.Repos.Inventory.Get(context.Background(), 30, 40)
		require.NoError(t, err)
		assert.Equal(t, int64(5), inv.AvailableQuantity)
	})

	t.Run("missing seed file", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Type = "memory"
		cfg.Storage.SeedFile = filepath.Join(t.TempDir(), "nope.yaml")

		_, err := OpenStorage(cfg, nil)
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Type = "mongo"

		_, err := OpenStorage(cfg, nil)
		assert.EqualError(t, err, `unsupported storage type "mongo"`)
	})
}

func TestLendingPolicy(t *testing.T) {
	cfg := &config.Config{}
	cfg.Lending.DefaultReturnDays = 7
	cfg.Lending.Timezone = "UTC"
	cfg.Reporting.TopN = 5

	p := LendingPolicy(cfg)
	assert.Equal(t, 7, p.DefaultReturnDays)
	assert.Equal(t, time.UTC, p.Location)
	assert.Equal(t, 5, p.ReportTopN)
}
