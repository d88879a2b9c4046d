package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/repository"
	"toolcrib-backend/internal/repository/memory"
	"toolcrib-backend/internal/service"
)

const (
	workerAna  int64 = 1
	cribMgr    int64 = 2
	wpMgr      int64 = 3
	facMgr     int64 = 4
	workerBen  int64 = 5
	otherCrib  int64 = 6
	ownerUser  int64 = 7
	workplace  int64 = 10
	workplace2 int64 = 11
	crib       int64 = 30
	crib2      int64 = 31
	drill      int64 = 40
	scope      int64 = 41
	gloves     int64 = 42
)

var (
	ana        = domain.Actor{UserID: workerAna, Role: domain.RoleWorker}
	ben        = domain.Actor{UserID: workerBen, Role: domain.RoleWorker}
	cribActor  = domain.Actor{UserID: cribMgr, Role: domain.RoleToolCribManager}
	wpmActor   = domain.Actor{UserID: wpMgr, Role: domain.RoleWorkplaceManager}
	fmActor    = domain.Actor{UserID: facMgr, Role: domain.RoleFacilityManager}
	otherActor = domain.Actor{UserID: otherCrib, Role: domain.RoleToolCribManager}
	ownerActor = domain.Actor{UserID: ownerUser, Role: domain.RoleOwner}

	testCtx = context.Background()

	t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func ptr[T any](v T) *T { return &v }

func fixtureSeed() *memory.Seed {
	return &memory.Seed{
		Users: []memory.SeedUser{
			{ID: workerAna, Name: "Ana", Email: "ana@example.com", Role: domain.RoleWorker, WorkstationID: ptr(int64(20))},
			{ID: cribMgr, Name: "Cara", Email: "cara@example.com", Role: domain.RoleToolCribManager},
			{ID: wpMgr, Name: "Wes", Email: "wes@example.com", Role: domain.RoleWorkplaceManager},
			{ID: facMgr, Name: "Dev", Email: "dev@example.com", Role: domain.RoleFacilityManager},
			{ID: workerBen, Name: "Ben", Email: "ben@example.com", Role: domain.RoleWorker},
			{ID: otherCrib, Name: "Olga", Email: "olga@example.com", Role: domain.RoleToolCribManager},
			{ID: ownerUser, Name: "Oren", Email: "oren@example.com", Role: domain.RoleOwner},
		},
		Facilities: []memory.SeedFacility{{ID: 5, Name: "North Plant", ManagerID: ptr(facMgr)}},
		Workplaces: []memory.SeedWorkplace{
			{ID: workplace, Name: "Assembly", FacilityID: 5, ManagerID: ptr(wpMgr)},
			{ID: workplace2, Name: "Paint Shop", FacilityID: 5},
		},
		Workstations: []memory.SeedWorkstation{{ID: 20, WorkplaceID: ptr(workplace)}},
		ToolCribs: []memory.SeedToolCrib{
			{ID: crib, Name: "Assembly Crib", WorkplaceID: workplace, Managers: []int64{cribMgr}},
			{ID: crib2, Name: "Paint Crib", WorkplaceID: workplace2, Managers: []int64{otherCrib}},
		},
		Tools: []memory.SeedTool{
			{ID: drill, Name: "Drill", Price: "80.00", FineAmount: "10", Category: domain.ToolCategoryNormal},
			{ID: scope, Name: "Oscilloscope", Price: "900.00", FineAmount: "25", ReturnPeriodDays: ptr(int32(7)), Category: domain.ToolCategorySpecial},
			{ID: gloves, Name: "Gloves", Price: "2.50", FineAmount: "1", IsPerishable: true, Category: domain.ToolCategoryNormal},
		},
		Inventory: []memory.SeedInventory{
			{ToolCribID: crib, ToolID: drill, Total: 10, Available: 10, MinimumThreshold: 2},
			{ToolCribID: crib, ToolID: scope, Total: 2, Available: 2},
			{ToolCribID: crib, ToolID: gloves, Total: 100, Available: 100, MinimumThreshold: 10},
		},
	}
}

type fixture struct {
	store    *repository.Store
	clock    *fixedClock
	email    *MockEmailService
	requests service.ToolRequestService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, func(*memory.Seed) {})
}

// newFixtureWith lets a test adjust the seed before it is loaded.
func newFixtureWith(t *testing.T, adjust func(seed *memory.Seed)) *fixture {
	t.Helper()
	seed := fixtureSeed()
	adjust(seed)
	mem := memory.NewStore()
	require.NoError(t, mem.Apply(seed))

	f := &fixture{
		store: mem.Repositories(),
		clock: &fixedClock{now: t0},
		email: newQuietEmailService(),
	}
	f.requests = service.NewToolRequestService(f.store, f.email, f.clock, service.LendingPolicy{DefaultReturnDays: 5}, nil)
	return f
}

// request creates a single-item request for ana and returns the item id.
func (f *fixture) request(t *testing.T, toolID, qty int64) int64 {
	t.Helper()
	req, err := f.requests.CreateToolRequest(testCtx, ana, []domain.RequestLine{{ToolID: toolID, Quantity: qty}})
	require.NoError(t, err)
	require.Len(t, req.Items, 1)
	return req.Items[0].ID
}

func (f *fixture) available(t *testing.T, toolID int64) int64 {
	t.Helper()
	inv, err := f.store.Inventory.Get(testCtx, crib, toolID)
	require.NoError(t, err)
	return inv.AvailableQuantity
}
