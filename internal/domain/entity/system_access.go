package entity

import "time"

// Portal system identifiers grantable per user.
const (
	SystemApprovals        = "shinsei-shonin"
	SystemWeeklyReports    = "weekly-report"
	SystemMasterManagement = "master-management"
)

// AllSystems returns every grantable system id
func AllSystems() []string {
	return []string{SystemApprovals, SystemWeeklyReports, SystemMasterManagement}
}

// ValidSystem reports whether id names a known portal system
func ValidSystem(id string) bool {
	switch id {
	case SystemApprovals, SystemWeeklyReports, SystemMasterManagement:
		return true
	default:
		return false
	}
}

// SystemAccess grants one user access to one portal system.
type SystemAccess struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	SystemID  string    `json:"system_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UserWithAccess pairs a user with the systems granted to them.
type UserWithAccess struct {
	User
	Systems []string `json:"systems"`
}
