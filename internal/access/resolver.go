package access

import (
	"context"

	"github.com/petermazzocco/interior-admin/internal/logger"
	"github.com/petermazzocco/interior-admin/models"
)

// Directory is the read side of the role store.
type Directory interface {
	List(ctx context.Context, kind models.Kind, filter models.Filter) ([]models.Record, error)
}

// accountKinds hold role records. Partners added from the partners panel
// are staff accounts too.
var accountKinds = []models.Kind{models.KindAdmins, models.KindPartners}

// Resolver turns a sign-in session into an Identity by looking up the role
// records stored under the session's email in the account collections.
type Resolver struct {
	dir Directory
}

func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve never fails. A missing session yields the unauthenticated
// identity; a missing role record or a lookup error yields RoleUser.
func (r *Resolver) Resolve(ctx context.Context, s models.Session) models.Identity {
	email := models.NormalizeEmail(s.Email)
	if !s.Authenticated || email == "" {
		return models.Unauthenticated()
	}
	id := models.Identity{UserID: s.UserID, Email: email, Role: models.RoleUser}

	var recs []models.Record
	for _, kind := range accountKinds {
		found, err := r.dir.List(ctx, kind, models.Filter{Title: email})
		if err != nil {
			logger.FromContext(ctx).Warn("role lookup failed, using least privilege", "email", email, "kind", kind, "error", err)
			return id
		}
		recs = append(recs, found...)
	}
	if len(recs) == 0 {
		return id
	}

	// Duplicate role records resolve to the weakest one.
	best := recs[0]
	for _, rec := range recs[1:] {
		if rank(models.ParseRole(rec.Role)) < rank(models.ParseRole(best.Role)) {
			best = rec
		}
	}
	id.Role = models.ParseRole(best.Role)
	id.City = best.Location
	return id
}

func rank(r models.Role) int {
	switch r {
	case models.RoleSuperAdmin:
		return 2
	case models.RoleAdmin:
		return 1
	default:
		return 0
	}
}
