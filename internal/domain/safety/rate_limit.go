package safety

import "time"

// RateLimitRecord is one fixed window for an (identity, action) key.
type RateLimitRecord struct {
	Key       string    `gorm:"column:rate_key;type:varchar(255);primaryKey" json:"key"`
	Count     int       `gorm:"column:count;not null;default:0" json:"count"`
	ResetTime time.Time `gorm:"column:reset_time;not null;index" json:"reset_time"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (RateLimitRecord) TableName() string { return "rate_limits" }

// Current reports whether the window is still open at now.
func (r *RateLimitRecord) Current(now time.Time) bool {
	return r != nil && r.ResetTime.After(now)
}
