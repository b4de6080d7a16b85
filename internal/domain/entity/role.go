package entity

// Role represents a user role within a tenant
type Role struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Role ID constants
const (
	RoleIDAdmin    = 1
	RoleIDProvider = 2
	RoleIDClient   = 3
)

// RoleNames constants
const (
	RoleAdmin    = "ADMIN"
	RoleProvider = "PROVIDER"
	RoleClient   = "CLIENT"
)

// DefaultRoles is the fixed role table seeded on migration.
var DefaultRoles = []Role{
	{ID: RoleIDAdmin, RoleName: RoleAdmin, Description: "Manages the organization, its services and members"},
	{ID: RoleIDProvider, RoleName: RoleProvider, Description: "Delivers services and owns a calendar"},
	{ID: RoleIDClient, RoleName: RoleClient, Description: "Books appointments"},
}

// RoleName returns the name for a role id, or an empty string.
func RoleName(id int) string {
	for _, r := range DefaultRoles {
		if r.ID == id {
			return r.RoleName
		}
	}
	return ""
}

// RoleIDByName returns the id for a role name, or zero.
func RoleIDByName(name string) int {
	for _, r := range DefaultRoles {
		if r.RoleName == name {
			return r.ID
		}
	}
	return 0
}
