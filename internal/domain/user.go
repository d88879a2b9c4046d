package domain

type Role string

const (
	RoleWorker           Role = "WORKER"
	RoleToolCribManager  Role = "TOOL_CRIB_MANAGER"
	RoleWorkplaceManager Role = "WORKPLACE_MANAGER"
	RoleFacilityManager  Role = "FACILITY_MANAGER"
	RoleOwner            Role = "OWNER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleWorker, RoleToolCribManager, RoleWorkplaceManager, RoleFacilityManager, RoleOwner:
		return true
	}
	return false
}

// IsApprover reports whether the role takes part in the approval workflow.
func (r Role) IsApprover() bool {
	return r == RoleToolCribManager || r == RoleWorkplaceManager
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Actor is the authenticated caller of an operation. It is passed explicitly
// to every service method instead of being read from ambient state.
type Actor struct {
	UserID int64 `json:"user_id"`
	Role   Role  `json:"role"`
}
