package domain

import "time"

// Idempotency records the response produced for a non-idempotent request,
// keyed by (user_id, scope, key). A retried POST /like carrying the same
// Idempotency-Key replays Status and Body instead of toggling again.
type Idempotency struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:ux_idem_user_scope_key,priority:1"`
	Scope     string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_idem_user_scope_key,priority:2"`
	Key       string    `gorm:"type:varchar(200);not null;uniqueIndex:ux_idem_user_scope_key,priority:3"`
	Status    int       `gorm:"not null"`
	Body      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
