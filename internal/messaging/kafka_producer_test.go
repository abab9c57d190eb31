package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/wuyan/lifescope/internal/domain"
)

type recordingWriter struct {
	batches [][]kafkago.Message
	err     error
	closed  bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.batches = append(w.batches, msgs)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestBuildMessage(t *testing.T) {
	msg, err := BuildMessage(domain.BehaviorRecord{
		UserID:     42,
		RecordDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		AppName:    "Notes",
		UsageMins:  15,
	})
	if err != nil {
		t.Fatalf("BuildMessage: %v", err)
	}
	if string(msg.Key) != "42" {
		t.Errorf("key = %q, want 42", msg.Key)
	}

	var got map[string]any
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]any{
		"user_id":     float64(42),
		"record_date": "2026-03-09",
		"app_name":    "Notes",
		"usage_mins":  float64(15),
		"category":    "others",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
	if len(got) != len(want) {
		t.Errorf("unexpected fields: %v", got)
	}
}

func TestKafkaPublisher_PublishBatch(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaPublisher(w, zap.NewNop())
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(),
		domain.BehaviorRecord{UserID: 1, RecordDate: day, AppName: "A", UsageMins: 1, Category: "work"},
		domain.BehaviorRecord{UserID: 1, RecordDate: day, AppName: "B", UsageMins: 2},
	)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(w.batches) != 1 || len(w.batches[0]) != 2 {
		t.Fatalf("expected one batch of two messages, got %v", w.batches)
	}

	if err := p.Publish(context.Background()); err != nil || len(w.batches) != 1 {
		t.Fatalf("empty publish should be a no-op")
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Fatal("Close should close the writer")
	}
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	cause := errors.New("broker unavailable")
	p := newKafkaPublisher(&recordingWriter{err: cause}, zap.NewNop())

	err := p.Publish(context.Background(), domain.BehaviorRecord{UserID: 1, AppName: "A", UsageMins: 1})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
}
