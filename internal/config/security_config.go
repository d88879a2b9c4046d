package config

import "toolcrib-backend/internal/domain"

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Access token required
)

// EndpointSecurity is the access rule for one route. An empty Roles list
// admits every authenticated caller.
type EndpointSecurity struct {
	Level SecurityLevel
	Roles []domain.Role
}

func access(roles ...domain.Role) EndpointSecurity {
	return EndpointSecurity{Level: SecurityAccess, Roles: roles}
}

// EndpointSecurityConfig maps "METHOD path-template" to its access rule
var EndpointSecurityConfig = map[string]EndpointSecurity{
	"GET /healthz": {Level: SecurityPublic},

	// Tool requests
	"POST /api/v1/tool-requests":                           access(domain.RoleWorker),
	"GET /api/v1/tool-request-items":                       access(),
	"POST /api/v1/tool-request-items/{id:[0-9]+}/decision": access(domain.RoleWorkplaceManager, domain.RoleToolCribManager),
	"POST /api/v1/tool-request-items/{id:[0-9]+}/return":   access(domain.RoleToolCribManager),

	// Inventory
	"GET /api/v1/tool-cribs/{id:[0-9]+}/inventory":  access(),
	"GET /api/v1/tool-cribs/{id:[0-9]+}/unreturned": access(domain.RoleToolCribManager),
	"POST /api/v1/workplaces/{id:[0-9]+}/inventory": access(domain.RoleFacilityManager),

	// Reports
	"GET /api/v1/reports/top-demanded": access(domain.RoleOwner, domain.RoleFacilityManager),
	"GET /api/v1/reports/top-broken":   access(domain.RoleOwner, domain.RoleFacilityManager),
	"GET /api/v1/reports/top-priced":   access(domain.RoleOwner, domain.RoleFacilityManager),

	// Notifications
	"GET /api/v1/notifications": access(),
}

// GetEndpointSecurity returns the access rule for a route
func GetEndpointSecurity(method, pathTemplate string) EndpointSecurity {
	if rule, exists := EndpointSecurityConfig[method+" "+pathTemplate]; exists {
		return rule
	}
	// Default to highest security for unknown endpoints
	return EndpointSecurity{Level: SecurityAccess}
}

// Allows reports whether role may call a route with this rule
func (e EndpointSecurity) Allows(role domain.Role) bool {
	if len(e.Roles) == 0 {
		return true
	}
	for _, r := range e.Roles {
		if r == role {
			return true
		}
	}
	return false
}
