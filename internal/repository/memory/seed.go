package memory

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"toolcrib-backend/internal/domain"
)

// Seed describes the reference data the engine reads but never writes:
// people, premises, the tool catalog and opening stock.
type Seed struct {
	Users        []SeedUser        `yaml:"users"`
	Facilities   []SeedFacility    `yaml:"facilities"`
	Workplaces   []SeedWorkplace   `yaml:"workplaces"`
	Workstations []SeedWorkstation `yaml:"workstations"`
	ToolCribs    []SeedToolCrib    `yaml:"tool_cribs"`
	Tools        []SeedTool        `yaml:"tools"`
	Inventory    []SeedInventory   `yaml:"inventory"`
}

type SeedUser struct {
	ID            int64       `yaml:"id"`
	Name          string      `yaml:"name"`
	Email         string      `yaml:"email"`
	Role          domain.Role `yaml:"role"`
	WorkstationID *int64      `yaml:"workstation_id"`
}

type SeedFacility struct {
	ID        int64  `yaml:"id"`
	Name      string `yaml:"name"`
	ManagerID *int64 `yaml:"manager_id"`
}

type SeedWorkplace struct {
	ID         int64  `yaml:"id"`
	Name       string `yaml:"name"`
	FacilityID int64  `yaml:"facility_id"`
	ManagerID  *int64 `yaml:"manager_id"`
}

type SeedWorkstation struct {
	ID          int64  `yaml:"id"`
	WorkplaceID *int64 `yaml:"workplace_id"`
}

type SeedToolCrib struct {
	ID          int64   `yaml:"id"`
	Name        string  `yaml:"name"`
	WorkplaceID int64   `yaml:"workplace_id"`
	Managers    []int64 `yaml:"managers"`
}

type SeedTool struct {
	ID               int64               `yaml:"id"`
	Name             string              `yaml:"name"`
	Price            string              `yaml:"price"`
	IsPerishable     bool                `yaml:"is_perishable"`
	ReturnPeriodDays *int32              `yaml:"return_period_days"`
	FineAmount       string              `yaml:"fine_amount"`
	Category         domain.ToolCategory `yaml:"category"`
}

type SeedInventory struct {
	ToolCribID       int64 `yaml:"tool_crib_id"`
	ToolID           int64 `yaml:"tool_id"`
	Total            int64 `yaml:"total"`
	Available        int64 `yaml:"available"`
	Broken           int64 `yaml:"broken"`
	MinimumThreshold int64 `yaml:"minimum_threshold"`
}

// LoadSeedFile reads a YAML seed file.
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

func parseMoney(field, v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, v, err)
	}
	return d, nil
}

// Apply loads the seed into the store. Explicit ids are kept and the id
// sequence is advanced past the largest one.
func (s *Store) Apply(seed *Seed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state

	bump := func(id int64) {
		if id > st.seq {
			st.seq = id
		}
	}

	for _, u := range seed.Users {
		if !u.Role.Valid() {
			return fmt.Errorf("user %d: invalid role %q", u.ID, u.Role)
		}
		st.users[u.ID] = domain.User{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
		if u.WorkstationID != nil {
			st.userStations[u.ID] = *u.WorkstationID
		}
		bump(u.ID)
	}
	for _, f := range seed.Facilities {
		if f.ManagerID != nil {
			st.facilityMgrs[f.ID] = *f.ManagerID
		}
		bump(f.ID)
	}
	for _, w := range seed.Workplaces {
		st.workplaces[w.ID] = domain.Workplace{ID: w.ID, Name: w.Name, FacilityID: w.FacilityID, ManagerID: w.ManagerID}
		bump(w.ID)
	}
	for _, w := range seed.Workstations {
		st.workstations[w.ID] = workstation{ID: w.ID, WorkplaceID: w.WorkplaceID}
		bump(w.ID)
	}
	for _, c := range seed.ToolCribs {
		st.cribs[c.ID] = domain.ToolCrib{ID: c.ID, Name: c.Name, WorkplaceID: c.WorkplaceID}
		st.cribManagers[c.ID] = append([]int64(nil), c.Managers...)
		bump(c.ID)
	}
	for _, t := range seed.Tools {
		if !t.Category.Valid() {
			return fmt.Errorf("tool %d: invalid category %q", t.ID, t.Category)
		}
		if t.ReturnPeriodDays != nil && *t.ReturnPeriodDays < 0 {
			return fmt.Errorf("tool %d: negative return period %d", t.ID, *t.ReturnPeriodDays)
		}
		price, err := parseMoney("price", t.Price)
		if err != nil {
			return fmt.Errorf("tool %d: %w", t.ID, err)
		}
		fine, err := parseMoney("fine_amount", t.FineAmount)
		if err != nil {
			return fmt.Errorf("tool %d: %w", t.ID, err)
		}
		st.tools[t.ID] = domain.Tool{
			ID:               t.ID,
			Name:             t.Name,
			Price:            price,
			IsPerishable:     t.IsPerishable,
			ReturnPeriodDays: t.ReturnPeriodDays,
			FineAmount:       fine,
			Category:         t.Category,
		}
		bump(t.ID)
	}
	for _, i := range seed.Inventory {
		if i.Available < 0 || i.Available > i.Total || i.Broken < 0 {
			return fmt.Errorf("inventory for tool %d in crib %d violates quantity bounds", i.ToolID, i.ToolCribID)
		}
		st.inventory[inventoryKey{i.ToolCribID, i.ToolID}] = domain.Inventory{
			ID:                st.nextID(),
			ToolCribID:        i.ToolCribID,
			ToolID:            i.ToolID,
			TotalQuantity:     i.Total,
			AvailableQuantity: i.Available,
			BrokenQuantity:    i.Broken,
			MinimumThreshold:  i.MinimumThreshold,
			LastUpdated:       time.Now(),
		}
	}
	return nil
}
