package models

import (
	"time"
)

// User roles. Unknown roles carry no permissions.
const (
	RoleAdmin     = "admin"
	RolePM        = "pm"
	RoleDeveloper = "developer"
	RoleTester    = "tester"
	RoleGuest     = "guest"
)

// User account statuses. Deletion is a soft delete to inactive.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// Developer statuses.
const (
	DeveloperStatusActive    = "active"
	DeveloperStatusDeparted  = "departed"
	DeveloperStatusProbation = "probation"
)

// Bug statuses. The column is free text; these are the values the UI offers.
const (
	BugStatusPending  = "pending"
	BugStatusUrgent   = "urgent"
	BugStatusNormal   = "normal"
	BugStatusLow      = "low"
	BugStatusResolved = "resolved"
)

// Unassigned is the display sentinel for bugs without an assignee.
const Unassigned = "unassigned"

// FilterAll is the sentinel filter value treated as "no filter".
const FilterAll = "all"

// User represents a login identity.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:100;not null" json:"username"`
	PasswordHash string     `gorm:"column:password_hash;size:255;not null" json:"-"`
	Salt         string     `gorm:"size:64;not null" json:"-"`
	Role         string     `gorm:"size:50;not null;default:tester" json:"role"`
	Email        *string    `gorm:"uniqueIndex;size:255" json:"email"`
	RealName     string     `gorm:"column:real_name;size:100" json:"real_name"`
	Status       string     `gorm:"size:20;not null;default:active" json:"status"`
	LastLogin    *time.Time `gorm:"column:last_login" json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
}

// DisplayName returns the real name when set, otherwise the username.
// Bug ownership checks compare against this value.
func (u *User) DisplayName() string {
	if u.RealName != "" {
		return u.RealName
	}
	return u.Username
}

// Developer is an assignable engineer. It is distinct from User; the
// optional UserID link is informational and carries no cascade behavior.
type Developer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Email     *string   `gorm:"uniqueIndex;size:255" json:"email"`
	Role      string    `gorm:"size:100;not null;default:engineer" json:"role"`
	Status    string    `gorm:"size:20;not null;default:active" json:"status"`
	UserID    *uint     `gorm:"column:user_id" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Bug is a defect record. Submitter is a free-text name, not a foreign key.
// AssigneeID is nullable; referential integrity against developers is
// enforced in application code, not by the schema.
type Bug struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Version     string     `gorm:"size:100;not null" json:"version"`
	Region      string     `gorm:"size:100;not null" json:"region"`
	Submitter   string     `gorm:"size:100;not null;index" json:"submitter"`
	AssigneeID  *uint      `gorm:"column:assignee_id;index" json:"assignee_id"`
	Status      string     `gorm:"size:50;not null;default:pending" json:"status"`
	Screenshot  string     `gorm:"size:500" json:"screenshot"`
	LogFile     string     `gorm:"column:log_file;size:500" json:"log_file"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at" json:"resolved_at"`
}

// TableName overrides
func (User) TableName() string      { return "users" }
func (Developer) TableName() string { return "developers" }
func (Bug) TableName() string       { return "bugs" }
