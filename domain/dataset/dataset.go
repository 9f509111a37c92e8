package dataset

import (
	"time"

	"datalens/domain/core"
)

// Format identifies the declared on-disk format of an uploaded file
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatJSON Format = "json"
)

// FormatFromExtension maps a lowercase file extension (with dot) to a Format
func FormatFromExtension(ext string) (Format, bool) {
	switch ext {
	case ".csv":
		return FormatCSV, true
	case ".xlsx":
		return FormatXLSX, true
	case ".xls":
		return FormatXLS, true
	case ".json":
		return FormatJSON, true
	default:
		return "", false
	}
}

// Dataset is the persisted metadata record for one uploaded file
type Dataset struct {
	ID               core.ID   `db:"id" json:"id"`
	UserID           core.ID   `db:"user_id" json:"user_id"`
	Filename         string    `db:"filename" json:"filename"`
	OriginalFilename string    `db:"original_filename" json:"original_filename"`
	FileType         Format    `db:"file_type" json:"file_type"`
	FilePath         string    `db:"file_path" json:"-"`
	FileSize         int64     `db:"file_size" json:"file_size"`
	RowCount         int       `db:"row_count" json:"row_count"`
	ColumnCount      int       `db:"column_count" json:"column_count"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// User is an authenticated account that owns datasets
type User struct {
	ID             core.ID   `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	FullName       string    `db:"full_name" json:"full_name"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Session is an opaque bearer token tied to a user
type Session struct {
	Token     string    `db:"token" json:"token"`
	UserID    core.ID   `db:"user_id" json:"user_id"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the session is past its expiry
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
