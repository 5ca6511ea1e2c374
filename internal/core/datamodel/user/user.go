package user

import "time"

type User struct {
	ID           string     `gorm:"primaryKey;type:uuid"`
	Email        string     `gorm:"column:email;uniqueIndex;not null"`
	Name         string     `gorm:"column:name;not null"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         string     `gorm:"column:role;not null"`
	SubRole      *string    `gorm:"column:sub_role"`
	IsActive     bool       `gorm:"column:is_active;default:true"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;default:now()"`
}

// RolePermission is one row of the role_permissions lookup view: a
// per-deployment override binding from a sub-role to a permission name.
type RolePermission struct {
	ID         int64     `gorm:"primaryKey"`
	SubRole    string    `gorm:"column:sub_role;not null"`
	Permission string    `gorm:"column:permission;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;default:now()"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
