package models

// Role ранжирует вызывающих по уровню доступа к движку.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleOrganizer Role = "organizer"
	RoleStaff     Role = "staff"
	RoleViewer    Role = "viewer"
)

// Privileged reports whether the role may mutate structure: generate
// brackets, transition lifecycle, resolve disputes, reassign slots.
func (r Role) Privileged() bool {
	return r == RoleOwner || r == RoleOrganizer
}

// CanOverride reports whether the role may use the incomplete-groups and
// regeneration overrides. Owner only.
func (r Role) CanOverride() bool {
	return r == RoleOwner
}

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleOrganizer, RoleStaff, RoleViewer:
		return true
	}
	return false
}
