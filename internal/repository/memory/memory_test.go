package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/repository"
)

func ptr[T any](v T) *T { return &v }

func testSeed() *Seed {
	return &Seed{
		Users: []SeedUser{
			{ID: 1, Name: "Ana", Email: "ana@example.com", Role: domain.RoleWorker, WorkstationID: ptr(int64(20))},
			{ID: 2, Name: "Ben", Email: "ben@example.com", Role: domain.RoleWorker},
			{ID: 3, Name: "Cara", Email: "cara@example.com", Role: domain.RoleToolCribManager},
			{ID: 4, Name: "Dev", Email: "dev@example.com", Role: domain.RoleFacilityManager},
		},
		Facilities:   []SeedFacility{{ID: 5, Name: "North", ManagerID: ptr(int64(4))}},
		Workplaces:   []SeedWorkplace{{ID: 10, Name: "Assembly", FacilityID: 5}},
		Workstations: []SeedWorkstation{{ID: 20, WorkplaceID: ptr(int64(10))}},
		ToolCribs:    []SeedToolCrib{{ID: 30, Name: "Assembly Crib", WorkplaceID: 10, Managers: []int64{3}}},
		Tools: []SeedTool{
			{ID: 40, Name: "Drill", Price: "80.00", FineAmount: "10", Category: domain.ToolCategoryNormal},
		},
		Inventory: []SeedInventory{{ToolCribID: 30, ToolID: 40, Total: 10, Available: 4, MinimumThreshold: 5}},
	}
}

func newSeededStore(t *testing.T) (*Store, *repository.Store) {
	t.Helper()
	store := NewStore()
	require.NoError(t, store.Apply(testSeed()))
	return store, store.Repositories()
}

func TestStore_ResolvePlacement(t *testing.T) {
	_, repos := newSeededStore(t)
	ctx := context.Background()

	p, err := repos.Premises.ResolvePlacement(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.WorkplaceID)
	assert.Equal(t, int64(30), p.ToolCribID)

	_, err = repos.Premises.ResolvePlacement(ctx, 2)
	assert.True(t, errors.Is(err, domain.ErrWorkerNotProvisioned))

	_, err = repos.Premises.ResolvePlacement(ctx, 99)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	ok, err := repos.Premises.IsFacilityManager(ctx, 4, 10)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_WithinTxRollsBackOnError(t *testing.T) {
	_, repos := newSeededStore(t)
	ctx := context.Background()

	err := repos.WithinTx(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		inv, err := tx.Inventory.GetForUpdate(ctx, 30, 40)
		if err != nil {
			return err
		}
		inv.AvailableQuantity = 0
		if err := tx.Inventory.UpdateQuantities(ctx, inv); err != nil {
			return err
		}
		return domain.ErrInvalidArgument
	})
	require.Error(t, err)

	inv, err := repos.Inventory.Get(ctx, 30, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(4), inv.AvailableQuantity)
}

func TestStore_WithinTxCommits(t *testing.T) {
	_, repos := newSeededStore(t)
	ctx := context.Background()

	err := repos.WithinTx(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		_, err := tx.Inventory.Restock(ctx, 30, 40, 6)
		return err
	})
	require.NoError(t, err)

	inv, err := repos.Inventory.Get(ctx, 30, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(16), inv.TotalQuantity)
	assert.Equal(t, int64(10), inv.AvailableQuantity)
}

func TestStore_InventoryFilter(t *testing.T) {
	_, repos := newSeededStore(t)
	ctx := context.Background()

	views, err := repos.Inventory.List(ctx, 30, domain.InventoryFilter{Name: "dri", LowStockOnly: true})
	require.NoError(t, err)
	assert.Len(t, views, 1)

	views, err = repos.Inventory.List(ctx, 30, domain.InventoryFilter{Categories: []domain.ToolCategory{domain.ToolCategorySpecial}})
	require.NoError(t, err)
	assert.Empty(t, views)

	low, err := repos.Inventory.ListBelowThreshold(ctx)
	require.NoError(t, err)
	assert.Len(t, low, 1)
}

func TestStore_ApplyRejectsBadSeed(t *testing.T) {
	store := NewStore()
	seed := testSeed()
	seed.Inventory[0].Available = 11

	assert.Error(t, store.Apply(seed))

	seed = testSeed()
	seed.Tools[0].ReturnPeriodDays = ptr(int32(-1))
	assert.ErrorContains(t, NewStore().Apply(seed), "negative return period")
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := `
users:
  - id: 1
    name: Ana
    email: ana@example.com
    role: WORKER
    workstation_id: 20
tools:
  - id: 40
    name: Drill
    price: "80.00"
    fine_amount: "10"
    return_period_days: 7
    category: NORMAL
inventory:
  - tool_crib_id: 30
    tool_id: 40
    total: 10
    available: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	seed, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, seed.Tools, 1)
	assert.Equal(t, int32(7), *seed.Tools[0].ReturnPeriodDays)
	assert.Equal(t, int64(20), *seed.Users[0].WorkstationID)

	store := NewStore()
	require.NoError(t, store.Apply(seed))
	tool, err := store.Repositories().Tools.GetByID(context.Background(), 40)
	require.NoError(t, err)
	assert.Equal(t, "80", tool.Price.String())
}
