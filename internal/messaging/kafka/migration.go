package kafka

import (
	"time"
)

// outboxRecord exists only so gorm AutoMigrate creates the table the
// raw-SQL repository reads and writes.
type outboxRecord struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	RequestID     string    `gorm:"type:varchar(64)"`
	AggregateType string    `gorm:"type:varchar(50);not null"`
	AggregateID   string    `gorm:"type:uuid;not null"`
	EventType     string    `gorm:"type:varchar(50);not null"`
	Topic         string    `gorm:"type:varchar(100);not null"`
	Payload       []byte    `gorm:"type:jsonb;not null"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	RetryCount    int       `gorm:"type:int;not null;default:0"`
	ErrorMessage  *string   `gorm:"type:varchar(500)"`
	NextRetryAt   *time.Time
	ProcessedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (outboxRecord) TableName() string { return "outbox_events" }

// MigrationModels returns the models the app migrates at startup.
func MigrationModels() []any {
	return []any{&outboxRecord{}}
}
