package domain

import "time"

// DefaultBehaviorCategory is used when a record arrives without a category.
const DefaultBehaviorCategory = "others"

// BehaviorRecord is one app-usage sample uploaded by a user.
type BehaviorRecord struct {
	UserID     int64
	RecordDate time.Time
	AppName    string
	UsageMins  int
	Category   string
}
