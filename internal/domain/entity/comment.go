package entity

import "time"

// Comment belongs to one application; append-only.
type Comment struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id"`
	UserID        int64     `json:"user_id"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`

	UserName       string `json:"user_name,omitempty"`
	UserDepartment string `json:"user_department,omitempty"`
}

// Attachment holds file metadata for an application. The bytes
// themselves live with an external storage collaborator.
type Attachment struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id"`
	FileName      string    `json:"file_name"`
	FilePath      string    `json:"file_path"`
	FileSize      int64     `json:"file_size"`
	MimeType      string    `json:"mime_type"`
	UploadedBy    int64     `json:"uploaded_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// Favorite is a (user, application) pairing with no lifecycle beyond
// toggle add/remove.
type Favorite struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	ApplicationID int64     `json:"application_id"`
	CreatedAt     time.Time `json:"created_at"`
}
