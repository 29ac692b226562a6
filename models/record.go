package models

import (
	"maps"
	"slices"
	"time"
)

// Kind names a remote collection.
type Kind string

const (
	KindDesigns  Kind = "designs"
	KindProjects Kind = "recentProjects"
	KindAdmins   Kind = "admins"
	KindPartners Kind = "partners"
	KindBlogs    Kind = "blogs"
	KindUsers    Kind = "users"
)

func Kinds() []Kind {
	return []Kind{KindDesigns, KindProjects, KindAdmins, KindPartners, KindBlogs, KindUsers}
}

func (k Kind) Valid() bool {
	return slices.Contains(Kinds(), k)
}

// ImageRef points at an externally hosted image. DeletionToken must be kept
// for as long as the image lives; without it the asset cannot be removed.
type ImageRef struct {
	DisplayURL    string `json:"url" firestore:"url"`
	DeletionToken string `json:"deleteUrl,omitempty" firestore:"deleteUrl"`
}

// Upload is one staged file waiting to be sent to the asset host.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (u Upload) Size() int64 { return int64(len(u.Data)) }

// Record is one catalog entry. Each kind maps its own fields onto the
// shared slots: Title holds a design title, project name, account email or
// lead name; Category the design/blog category or project property type;
// Location a city. Everything else lives in Fields.
type Record struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	Title     string         `json:"title"`
	Category  string         `json:"category,omitempty"`
	Location  string         `json:"location,omitempty"`
	Role      string         `json:"role,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
	Images    []ImageRef     `json:"images"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Clone returns a copy that shares no slices or maps with r.
func (r Record) Clone() Record {
	out := r
	out.Images = slices.Clone(r.Images)
	if out.Images == nil {
		out.Images = []ImageRef{}
	}
	out.Fields = cloneFields(r.Fields)
	return out
}

func cloneFields(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch tv := v.(type) {
		case []string:
			out[k] = slices.Clone(tv)
		case []any:
			out[k] = slices.Clone(tv)
		case map[string]any:
			out[k] = cloneFields(tv)
		default:
			out[k] = v
		}
	}
	return out
}

// Patch carries only the fields an update changes. Nil means untouched.
// Fields entries are merged key by key.
type Patch struct {
	Title    *string        `json:"title,omitempty"`
	Category *string        `json:"category,omitempty"`
	Location *string        `json:"location,omitempty"`
	Role     *string        `json:"role,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
	Images   *[]ImageRef    `json:"images,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Category == nil && p.Location == nil &&
		p.Role == nil && len(p.Fields) == 0 && p.Images == nil
}

// Apply returns a new record with the patch applied; r is left untouched.
func (p Patch) Apply(r Record) Record {
	out := r.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.Location != nil {
		out.Location = *p.Location
	}
	if p.Role != nil {
		out.Role = *p.Role
	}
	if len(p.Fields) > 0 {
		if out.Fields == nil {
			out.Fields = make(map[string]any, len(p.Fields))
		}
		maps.Copy(out.Fields, cloneFields(p.Fields))
	}
	if p.Images != nil {
		out.Images = slices.Clone(*p.Images)
		if out.Images == nil {
			out.Images = []ImageRef{}
		}
	}
	return out
}

// Filter is a set of equality constraints for list reads. Empty strings
// are unconstrained. Empty is set when two constraints contradict and no
// record can match.
type Filter struct {
	Title    string   `json:"title,omitempty"`
	Category string   `json:"category,omitempty"`
	Location string   `json:"location,omitempty"`
	Role     string   `json:"role,omitempty"`
	RoleNot  []string `json:"roleNot,omitempty"`
	Empty    bool     `json:"-"`
}

func (f Filter) Matches(r Record) bool {
	if f.Empty {
		return false
	}
	if f.Title != "" && r.Title != f.Title {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.Location != "" && r.Location != f.Location {
		return false
	}
	if f.Role != "" && r.Role != f.Role {
		return false
	}
	return !slices.Contains(f.RoleNot, r.Role)
}

// Intersect combines two filters so that a record matches the result only
// if it matches both.
func (f Filter) Intersect(o Filter) Filter {
	out := Filter{Empty: f.Empty || o.Empty}
	out.Title, out.Empty = meet(f.Title, o.Title, out.Empty)
	out.Category, out.Empty = meet(f.Category, o.Category, out.Empty)
	out.Location, out.Empty = meet(f.Location, o.Location, out.Empty)
	out.Role, out.Empty = meet(f.Role, o.Role, out.Empty)
	for _, role := range slices.Concat(f.RoleNot, o.RoleNot) {
		if !slices.Contains(out.RoleNot, role) {
			out.RoleNot = append(out.RoleNot, role)
		}
	}
	if out.Role != "" {
		if slices.Contains(out.RoleNot, out.Role) {
			out.Empty = true
		}
		// an exact role already excludes every other one
		out.RoleNot = nil
	}
	return out
}

func meet(a, b string, empty bool) (string, bool) {
	switch {
	case a == "":
		return b, empty
	case b == "" || a == b:
		return a, empty
	default:
		return a, true
	}
}
