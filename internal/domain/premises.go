package domain

type Workplace struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	FacilityID int64  `json:"facility_id"`
	ManagerID  *int64 `json:"manager_id,omitempty"`
}

type ToolCrib struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	WorkplaceID int64  `json:"workplace_id"`
}

// Placement is the resolved worker -> workstation -> workplace -> tool crib chain.
type Placement struct {
	WorkerID      int64 `json:"worker_id"`
	WorkstationID int64 `json:"workstation_id"`
	WorkplaceID   int64 `json:"workplace_id"`
	ToolCribID    int64 `json:"tool_crib_id"`
}
