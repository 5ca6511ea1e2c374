package cases

import "time"

type Case struct {
	ID         string `gorm:"primaryKey;type:uuid"`
	CaseNumber string `gorm:"column:case_number;uniqueIndex;not null"`
	// ClientID is nullable at the column level only for rows imported from
	// the legacy system, which carried a free-text client name. The seeder
	// backfill links those rows; the service refuses to create new cases
	// without a client id.
	ClientID         string    `gorm:"column:client_id;type:uuid;index"`
	LegacyClientName *string   `gorm:"column:legacy_client_name"`
	CaseType         string    `gorm:"column:case_type;not null"`
	Status           string    `gorm:"column:status;default:open"`
	AssignedStaffID  *string   `gorm:"column:assigned_staff_id;type:uuid"`
	CreatedAt        time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt        time.Time `gorm:"column:updated_at;default:now()"`
}

func (Case) TableName() string {
	return "cases"
}

type CaseAssignment struct {
	ID          string    `gorm:"primaryKey;type:uuid"`
	CaseID      string    `gorm:"column:case_id;type:uuid;not null;uniqueIndex:idx_case_principal_role"`
	PrincipalID string    `gorm:"column:principal_id;type:uuid;not null;uniqueIndex:idx_case_principal_role"`
	Role        string    `gorm:"column:role;not null;uniqueIndex:idx_case_principal_role"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
}

func (CaseAssignment) TableName() string {
	return "case_assignments"
}
