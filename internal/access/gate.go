package access

import (
	"fmt"

	"github.com/petermazzocco/interior-admin/models"
)

type Operation string

const (
	OpCreate  Operation = "create"
	OpUpdate  Operation = "update"
	OpDelete  Operation = "delete"
	OpViewAll Operation = "viewAll"
)

// Decision is the outcome of an authorization check. Scope only matters for
// OpViewAll and narrows which records the caller may see.
type Decision struct {
	Allowed bool
	Scope   models.Filter
	Reason  string
}

// Err is nil when the decision allows the operation.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return models.AuthorizationError("%s", d.Reason)
}

// scopeFunc returns the list scope for an identity, or false to deny.
type scopeFunc func(models.Identity) (models.Filter, bool)

type rolePolicy map[models.Role]scopeFunc

func unscoped(models.Identity) (models.Filter, bool) {
	return models.Filter{}, true
}

func withScope(f models.Filter) scopeFunc {
	return func(models.Identity) (models.Filter, bool) { return f, true }
}

// ownCity limits an admin to the plain users of their city. An admin with
// no city on record sees nothing.
func ownCity(id models.Identity) (models.Filter, bool) {
	if id.City == "" {
		return models.Filter{}, false
	}
	return models.Filter{Location: id.City, Role: string(models.RoleUser)}, true
}

func superAdminOnly() rolePolicy {
	return rolePolicy{models.RoleSuperAdmin: unscoped}
}

func staff() rolePolicy {
	return rolePolicy{models.RoleSuperAdmin: unscoped, models.RoleAdmin: unscoped}
}

// Gate answers whether a role may perform an operation on a collection.
// It does no I/O and holds no per-identity state.
type Gate struct {
	policy map[models.Kind]map[Operation]rolePolicy
}

func NewGate() *Gate {
	catalogPolicy := map[Operation]rolePolicy{
		OpCreate:  superAdminOnly(),
		OpUpdate:  superAdminOnly(),
		OpDelete:  superAdminOnly(),
		OpViewAll: staff(),
	}
	accountPolicy := map[Operation]rolePolicy{
		OpCreate: superAdminOnly(),
		OpUpdate: superAdminOnly(),
		OpDelete: superAdminOnly(),
		OpViewAll: {
			models.RoleSuperAdmin: withScope(models.Filter{RoleNot: []string{string(models.RoleSuperAdmin)}}),
		},
	}
	return &Gate{policy: map[models.Kind]map[Operation]rolePolicy{
		models.KindDesigns:  catalogPolicy,
		models.KindProjects: catalogPolicy,
		models.KindAdmins:   accountPolicy,
		models.KindPartners: accountPolicy,
		models.KindBlogs: {
			OpCreate:  staff(),
			OpUpdate:  staff(),
			OpDelete:  staff(),
			OpViewAll: staff(),
		},
		models.KindUsers: {
			OpCreate: superAdminOnly(),
			OpUpdate: superAdminOnly(),
			OpDelete: superAdminOnly(),
			OpViewAll: {
				models.RoleSuperAdmin: unscoped,
				models.RoleAdmin:      ownCity,
			},
		},
	}}
}

func (g *Gate) Authorize(id models.Identity, op Operation, kind models.Kind) Decision {
	if !id.Authenticated() {
		return Decision{Reason: "Please sign in to continue."}
	}
	scope, ok := g.policy[kind][op][id.Role]
	if !ok {
		return deny(id.Role, op, kind)
	}
	filter, ok := scope(id)
	if !ok {
		return deny(id.Role, op, kind)
	}
	return Decision{Allowed: true, Scope: filter}
}

func deny(role models.Role, op Operation, kind models.Kind) Decision {
	verb := string(op)
	if op == OpViewAll {
		verb = "view"
	}
	return Decision{Reason: fmt.Sprintf("Your role (%s) is not allowed to %s %s.", role, verb, kind)}
}
