package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tresmarias-build/procure-backend/pkg/enums"
)

// User is a back-office account with a single closed role.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FullName     string         `gorm:"column:full_name;not null"`
	Email        string         `gorm:"column:email;not null;uniqueIndex:uq_users_email"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
