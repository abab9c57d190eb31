package dto

import (
	"time"

	"github.com/wuyan/lifescope/internal/domain"
)

const recordDateLayout = "2006-01-02"

// BehaviorDataRequest is one uploaded app-usage sample.
type BehaviorDataRequest struct {
	RecordDate string `json:"record_date" validate:"required,datetime=2006-01-02"`
	AppName    string `json:"app_name" validate:"required,max=100"`
	UsageMins  int    `json:"usage_mins" validate:"min=1"`
	Category   string `json:"category" validate:"max=50"`
}

// ToRecord converts a validated request into a domain record.
func (r BehaviorDataRequest) ToRecord() (domain.BehaviorRecord, error) {
	day, err := time.Parse(recordDateLayout, r.RecordDate)
	if err != nil {
		return domain.BehaviorRecord{}, err
	}
	return domain.BehaviorRecord{
		RecordDate: day,
		AppName:    r.AppName,
		UsageMins:  r.UsageMins,
		Category:   r.Category,
	}, nil
}
