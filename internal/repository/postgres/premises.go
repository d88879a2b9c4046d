package postgres

import (
	"context"
	"database/sql"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/logger"
	"toolcrib-backend/internal/repository"
)

type premisesRepository struct {
	db DBTX
}

func NewPremisesRepository(db DBTX) repository.PremisesRepository {
	return &premisesRepository{db: db}
}

func (r *premisesRepository) ResolvePlacement(ctx context.Context, workerID int64) (*domain.Placement, error) {
	logger.EnterMethod("premisesRepository.ResolvePlacement", "workerID", workerID)

	query := `SELECT u.id, ws.id, wp.id, tc.id
	          FROM users u
	          LEFT JOIN workstations ws ON ws.id = u.workstation_id
	          LEFT JOIN workplaces wp ON wp.id = ws.workplace_id
	          LEFT JOIN tool_cribs tc ON tc.workplace_id = wp.id
	          WHERE u.id = $1`
	var userID int64
	var workstationID, workplaceID, cribID sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, workerID).Scan(&userID, &workstationID, &workplaceID, &cribID)
	if err != nil {
		logger.ExitMethodWithError("premisesRepository.ResolvePlacement", err, "workerID", workerID)
		return nil, notFound(err, "worker %d not found", workerID)
	}

	switch {
	case !workstationID.Valid:
		return nil, domain.NewWorkerNotProvisionedError(workerID, "workstation")
	case !workplaceID.Valid:
		return nil, domain.NewWorkerNotProvisionedError(workerID, "workplace")
	case !cribID.Valid:
		return nil, domain.NewWorkerNotProvisionedError(workerID, "tool crib")
	}

	p := &domain.Placement{
		WorkerID:      userID,
		WorkstationID: workstationID.Int64,
		WorkplaceID:   workplaceID.Int64,
		ToolCribID:    cribID.Int64,
	}
	logger.ExitMethod("premisesRepository.ResolvePlacement", "workplaceID", p.WorkplaceID, "toolCribID", p.ToolCribID)
	return p, nil
}

func (r *premisesRepository) GetToolCrib(ctx context.Context, id int64) (*domain.ToolCrib, error) {
	c := &domain.ToolCrib{}
	query := `SELECT id, name, workplace_id FROM tool_cribs WHERE id = $1`
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.WorkplaceID); err != nil {
		return nil, notFound(err, "tool crib %d not found", id)
	}
	return c, nil
}

func (r *premisesRepository) GetToolCribByWorkplace(ctx context.Context, workplaceID int64) (*domain.ToolCrib, error) {
	c := &domain.ToolCrib{}
	query := `SELECT id, name, workplace_id FROM tool_cribs WHERE workplace_id = $1`
	if err := r.db.QueryRowContext(ctx, query, workplaceID).Scan(&c.ID, &c.Name, &c.WorkplaceID); err != nil {
		return nil, notFound(err, "workplace %d has no tool crib", workplaceID)
	}
	return c, nil
}

func (r *premisesRepository) ListManagedToolCribs(ctx context.Context, managerID int64) ([]domain.ToolCrib, error) {
	query := `SELECT tc.id, tc.name, tc.workplace_id
	          FROM tool_cribs tc
	          JOIN tool_crib_managers m ON m.tool_crib_id = tc.id
	          WHERE m.user_id = $1
	          ORDER BY tc.id`
	rows, err := r.db.QueryContext(ctx, query, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cribs []domain.ToolCrib
	for rows.Next() {
		var c domain.ToolCrib
		if err := rows.Scan(&c.ID, &c.Name, &c.WorkplaceID); err != nil {
			return nil, err
		}
		cribs = append(cribs, c)
	}
	return cribs, rows.Err()
}

func (r *premisesRepository) ListManagedWorkplaces(ctx context.Context, managerID int64) ([]int64, error) {
	query := `SELECT id FROM workplaces WHERE manager_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *premisesRepository) IsFacilityManager(ctx context.Context, userID, workplaceID int64) (bool, error) {
	query := `SELECT EXISTS (
	              SELECT 1 FROM workplaces wp
	              JOIN facilities f ON f.id = wp.facility_id
	              WHERE wp.id = $1 AND f.manager_id = $2)`
	var ok bool
	err := r.db.QueryRowContext(ctx, query, workplaceID, userID).Scan(&ok)
	return ok, err
}

func (r *premisesRepository) ListToolCribManagers(ctx context.Context, toolCribID int64) ([]domain.User, error) {
	query := `SELECT u.id, u.name, u.email, u.role
	          FROM users u
	          JOIN tool_crib_managers m ON m.user_id = u.id
	          WHERE m.tool_crib_id = $1
	          ORDER BY u.id`
	rows, err := r.db.QueryContext(ctx, query, toolCribID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
