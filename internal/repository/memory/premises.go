package memory

import (
	"context"
	"sort"

	"toolcrib-backend/internal/domain"
)

type userRepository struct {
	access
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var out *domain.User
	err := r.read(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.NewNotFoundError("user %d not found", id)
		}
		out = &u
		return nil
	})
	return out, err
}

type premisesRepository struct {
	access
}

func (r *premisesRepository) ResolvePlacement(ctx context.Context, workerID int64) (*domain.Placement, error) {
	var out *domain.Placement
	err := r.read(func(st *state) error {
		if _, ok := st.users[workerID]; !ok {
			return domain.NewNotFoundError("worker %d not found", workerID)
		}
		wsID, ok := st.userStations[workerID]
		if !ok {
			return domain.NewWorkerNotProvisionedError(workerID, "workstation")
		}
		ws, ok := st.workstations[wsID]
		if !ok {
			return domain.NewWorkerNotProvisionedError(workerID, "workstation")
		}
		if ws.WorkplaceID == nil {
			return domain.NewWorkerNotProvisionedError(workerID, "workplace")
		}
		if _, ok := st.workplaces[*ws.WorkplaceID]; !ok {
			return domain.NewWorkerNotProvisionedError(workerID, "workplace")
		}
		crib, ok := cribForWorkplace(st, *ws.WorkplaceID)
		if !ok {
			return domain.NewWorkerNotProvisionedError(workerID, "tool crib")
		}
		out = &domain.Placement{
			WorkerID:      workerID,
			WorkstationID: ws.ID,
			WorkplaceID:   *ws.WorkplaceID,
			ToolCribID:    crib.ID,
		}
		return nil
	})
	return out, err
}

func cribForWorkplace(st *state, workplaceID int64) (domain.ToolCrib, bool) {
	for _, c := range st.cribs {
		if c.WorkplaceID == workplaceID {
			return c, true
		}
	}
	return domain.ToolCrib{}, false
}

func (r *premisesRepository) GetToolCrib(ctx context.Context, id int64) (*domain.ToolCrib, error) {
	var out *domain.ToolCrib
	err := r.read(func(st *state) error {
		c, ok := st.cribs[id]
		if !ok {
			return domain.NewNotFoundError("tool crib %d not found", id)
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *premisesRepository) GetToolCribByWorkplace(ctx context.Context, workplaceID int64) (*domain.ToolCrib, error) {
	var out *domain.ToolCrib
	err := r.read(func(st *state) error {
		c, ok := cribForWorkplace(st, workplaceID)
		if !ok {
			return domain.NewNotFoundError("workplace %d has no tool crib", workplaceID)
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *premisesRepository) ListManagedToolCribs(ctx context.Context, managerID int64) ([]domain.ToolCrib, error) {
	var cribs []domain.ToolCrib
	err := r.read(func(st *state) error {
		for cribID, managers := range st.cribManagers {
			for _, m := range managers {
				if m == managerID {
					cribs = append(cribs, st.cribs[cribID])
					break
				}
			}
		}
		return nil
	})
	sort.Slice(cribs, func(i, j int) bool { return cribs[i].ID < cribs[j].ID })
	return cribs, err
}

func (r *premisesRepository) ListManagedWorkplaces(ctx context.Context, managerID int64) ([]int64, error) {
	var ids []int64
	err := r.read(func(st *state) error {
		for _, w := range st.workplaces {
			if w.ManagerID != nil && *w.ManagerID == managerID {
				ids = append(ids, w.ID)
			}
		}
		return nil
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, err
}

func (r *premisesRepository) IsFacilityManager(ctx context.Context, userID, workplaceID int64) (bool, error) {
	var ok bool
	err := r.read(func(st *state) error {
		w, found := st.workplaces[workplaceID]
		if !found {
			return nil
		}
		mgr, found := st.facilityMgrs[w.FacilityID]
		ok = found && mgr == userID
		return nil
	})
	return ok, err
}

func (r *premisesRepository) ListToolCribManagers(ctx context.Context, toolCribID int64) ([]domain.User, error) {
	var users []domain.User
	err := r.read(func(st *state) error {
		for _, id := range st.cribManagers[toolCribID] {
			if u, ok := st.users[id]; ok {
				users = append(users, u)
			}
		}
		return nil
	})
	return users, err
}
