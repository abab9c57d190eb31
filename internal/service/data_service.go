package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/wuyan/lifescope/internal/domain"
	"github.com/wuyan/lifescope/internal/events"
)

// BehaviorPublisher forwards uploaded behavior records to the analytics pipeline.
type BehaviorPublisher interface {
	Publish(ctx context.Context, records ...domain.BehaviorRecord) error
}

// DataService accepts behavior uploads on behalf of a user.
type DataService struct {
	publisher  BehaviorPublisher
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewDataService constructs the service.
func NewDataService(publisher BehaviorPublisher, dispatcher events.Dispatcher, logger *zap.Logger) *DataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataService{publisher: publisher, dispatcher: dispatcher, logger: logger}
}

// Submit stamps every record with userID, fills default categories and publishes them.
func (s *DataService) Submit(ctx context.Context, userID int64, records []domain.BehaviorRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	stamped := make([]domain.BehaviorRecord, len(records))
	for i, record := range records {
		record.UserID = userID
		if record.Category == "" {
			record.Category = domain.DefaultBehaviorCategory
		}
		stamped[i] = record
	}

	if err := s.publisher.Publish(ctx, stamped...); err != nil {
		return 0, err
	}

	if s.dispatcher != nil {
		event := events.New(events.EventBehaviorSubmitted, userID, events.BehaviorSubmittedPayload{Count: len(stamped)})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
		}
	}
	return len(stamped), nil
}
