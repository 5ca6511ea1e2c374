package document

import "time"

type Document struct {
	ID           string    `gorm:"primaryKey;type:uuid"`
	CaseID       string    `gorm:"column:case_id;type:uuid;not null;index"`
	FileName     string    `gorm:"column:file_name;not null"`
	MimeType     string    `gorm:"column:mime_type"`
	SizeBytes    int64     `gorm:"column:size_bytes"`
	UploadedBy   string    `gorm:"column:uploaded_by;type:uuid;not null;index"`
	Bucket       string    `gorm:"column:bucket;not null"`
	StoragePath  string    `gorm:"column:storage_path;not null"`
	ReviewStatus string    `gorm:"column:review_status;default:pending"`
	UploadedAt   time.Time `gorm:"column:uploaded_at;default:now()"`
}

func (Document) TableName() string {
	return "documents"
}
