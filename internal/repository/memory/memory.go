// Package memory is an in-process implementation of the repositories used by
// tests and by the server when storage.type is "memory".
package memory

import (
	"context"
	"sync"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/repository"
)

type inventoryKey struct {
	cribID int64
	toolID int64
}

type workstation struct {
	ID          int64
	WorkplaceID *int64
}

type state struct {
	tools         map[int64]domain.Tool
	users         map[int64]domain.User
	userStations  map[int64]int64
	workstations  map[int64]workstation
	workplaces    map[int64]domain.Workplace
	facilityMgrs  map[int64]int64
	cribs         map[int64]domain.ToolCrib
	cribManagers  map[int64][]int64
	inventory     map[inventoryKey]domain.Inventory
	inventoryLogs []domain.InventoryLog
	requests      map[int64]domain.ToolRequest
	items         map[int64]domain.ToolRequestItem
	notifications []domain.Notification
	seq           int64
}

func newState() *state {
	return &state{
		tools:        make(map[int64]domain.Tool),
		users:        make(map[int64]domain.User),
		userStations: make(map[int64]int64),
		workstations: make(map[int64]workstation),
		workplaces:   make(map[int64]domain.Workplace),
		facilityMgrs: make(map[int64]int64),
		cribs:        make(map[int64]domain.ToolCrib),
		cribManagers: make(map[int64][]int64),
		inventory:    make(map[inventoryKey]domain.Inventory),
		requests:     make(map[int64]domain.ToolRequest),
		items:        make(map[int64]domain.ToolRequestItem),
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// clone copies every table. Values are stored by value and pointer fields
// inside them are never mutated in place, so a shallow copy per row suffices.
func (s *state) clone() *state {
	c := &state{
		tools:         make(map[int64]domain.Tool, len(s.tools)),
		users:         make(map[int64]domain.User, len(s.users)),
		userStations:  make(map[int64]int64, len(s.userStations)),
		workstations:  make(map[int64]workstation, len(s.workstations)),
		workplaces:    make(map[int64]domain.Workplace, len(s.workplaces)),
		facilityMgrs:  make(map[int64]int64, len(s.facilityMgrs)),
		cribs:         make(map[int64]domain.ToolCrib, len(s.cribs)),
		cribManagers:  make(map[int64][]int64, len(s.cribManagers)),
		inventory:     make(map[inventoryKey]domain.Inventory, len(s.inventory)),
		inventoryLogs: append([]domain.InventoryLog(nil), s.inventoryLogs...),
		requests:      make(map[int64]domain.ToolRequest, len(s.requests)),
		items:         make(map[int64]domain.ToolRequestItem, len(s.items)),
		notifications: append([]domain.Notification(nil), s.notifications...),
		seq:           s.seq,
	}
	for k, v := range s.tools {
		c.tools[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.userStations {
		c.userStations[k] = v
	}
	for k, v := range s.workstations {
		c.workstations[k] = v
	}
	for k, v := range s.workplaces {
		c.workplaces[k] = v
	}
	for k, v := range s.facilityMgrs {
		c.facilityMgrs[k] = v
	}
	for k, v := range s.cribs {
		c.cribs[k] = v
	}
	for k, v := range s.cribManagers {
		c.cribManagers[k] = append([]int64(nil), v...)
	}
	for k, v := range s.inventory {
		c.inventory[k] = v
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	return c
}

// Store serializes transactions on a single mutex. A transaction runs against
// a private copy of the state that replaces the live state on commit, so a
// failed transaction leaves nothing behind.
type Store struct {
	mu    sync.RWMutex
	state *state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

// access is embedded by every repository. Outside a transaction it takes the
// store lock around each call; inside one the lock is already held.
type access struct {
	store *Store
	tx    *state
}

func (a access) read(fn func(st *state) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	return fn(a.store.state)
}

func (a access) write(fn func(st *state) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	return fn(a.store.state)
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	working := s.state.clone()
	a := access{store: s, tx: working}
	repos := repository.TxRepositories{
		Tools:         &toolRepository{a},
		Premises:      &premisesRepository{a},
		Inventory:     &inventoryRepository{a},
		Requests:      &requestRepository{a},
		Notifications: &notificationRepository{a},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	s.state = working
	return nil
}

// Repositories returns the non-transactional repositories plus the store as
// transactor.
func (s *Store) Repositories() *repository.Store {
	a := access{store: s}
	return &repository.Store{
		Transactor:    s,
		Tools:         &toolRepository{a},
		Users:         &userRepository{a},
		Premises:      &premisesRepository{a},
		Inventory:     &inventoryRepository{a},
		Requests:      &requestRepository{a},
		Notifications: &notificationRepository{a},
	}
}
