package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wuyan/lifescope/internal/domain"
	"github.com/wuyan/lifescope/internal/events"
)

type capturePublisher struct {
	records []domain.BehaviorRecord
	err     error
}

func (c *capturePublisher) Publish(_ context.Context, records ...domain.BehaviorRecord) error {
	if c.err != nil {
		return c.err
	}
	c.records = append(c.records, records...)
	return nil
}

func TestDataService_Submit(t *testing.T) {
	pub := &capturePublisher{}
	dispatcher := events.NewInMemoryDispatcher()
	core, logs := observer.New(zap.InfoLevel)
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	svc := NewDataService(pub, dispatcher, nil)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	n, err := svc.Submit(context.Background(), 42, []domain.BehaviorRecord{
		{UserID: 7, RecordDate: day, AppName: "Mail", UsageMins: 10},
		{RecordDate: day, AppName: "IDE", UsageMins: 90, Category: "work"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if n != 2 || len(pub.records) != 2 {
		t.Fatalf("published %d records, reported %d", len(pub.records), n)
	}
	for _, r := range pub.records {
		if r.UserID != 42 {
			t.Errorf("record user id = %d, want caller's id 42", r.UserID)
		}
	}
	if pub.records[0].Category != domain.DefaultBehaviorCategory || pub.records[1].Category != "work" {
		t.Errorf("categories = %q, %q", pub.records[0].Category, pub.records[1].Category)
	}

	entries := logs.FilterMessage(string(events.EventBehaviorSubmitted)).All()
	if len(entries) != 1 || entries[0].ContextMap()["user_id"] != int64(42) {
		t.Fatalf("expected one audit entry for user 42, got %v", entries)
	}
}

func TestDataService_PublishFailure(t *testing.T) {
	cause := errors.New("broker down")
	svc := NewDataService(&capturePublisher{err: cause}, nil, nil)

	if _, err := svc.Submit(context.Background(), 1, []domain.BehaviorRecord{{AppName: "A", UsageMins: 1}}); !errors.Is(err, cause) {
		t.Fatalf("expected broker error, got %v", err)
	}
}

func TestDataService_EmptyBatch(t *testing.T) {
	pub := &capturePublisher{}
	n, err := NewDataService(pub, nil, nil).Submit(context.Background(), 1, nil)
	if err != nil || n != 0 || len(pub.records) != 0 {
		t.Fatalf("empty submit = %d, %v", n, err)
	}
}
