package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CredentialModel mirrors the 'admin_credentials' table.
// Identifier columns are nullable so the unique indexes ignore absent values.
type CredentialModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     *string   `gorm:"type:varchar(320);uniqueIndex:idx_admin_credentials_username"`
	Email        *string   `gorm:"type:varchar(320);uniqueIndex:idx_admin_credentials_email"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	MustRotate   bool      `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (CredentialModel) TableName() string {
	return "admin_credentials"
}

// BeforeCreate assigns the primary key when the caller did not.
func (m *CredentialModel) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	return nil
}
