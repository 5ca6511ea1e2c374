package message

import "time"

type Message struct {
	ID       string     `gorm:"primaryKey;type:uuid"`
	CaseID   string     `gorm:"column:case_id;type:uuid;not null;index"`
	SenderID string     `gorm:"column:sender_id;type:uuid;not null"`
	Body     string     `gorm:"column:body;not null"`
	SentAt   time.Time  `gorm:"column:sent_at;default:now()"`
	ReadAt   *time.Time `gorm:"column:read_at"`
}

func (Message) TableName() string {
	return "messages"
}
