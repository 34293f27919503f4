package entity

import "time"

// ApplicationType is a named category of request (vacation, expense, ...)
type ApplicationType struct {
	ID                 int64     `json:"id"`
	Code               string    `json:"code"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	RequiresAmount     bool      `json:"requires_amount"`
	RequiresAttachment bool      `json:"requires_attachment"`
	ApprovalLevels     int       `json:"approval_levels"`
	DisplayOrder       int       `json:"display_order"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
}
