package application

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/laborboard/pkg/domain/events"
)

// AuditService records every record change in the hash-chained audit trail
// and fans it out to live subscribers.
type AuditService struct {
	store     events.EventStore
	publisher events.EventPublisher
	logger    *slog.Logger
}

// NewAuditService wires the audit trail. Either collaborator may be nil: a nil
// store disables persistence, a nil publisher disables live fan-out.
func NewAuditService(store events.EventStore, publisher events.EventPublisher, logger *slog.Logger) *AuditService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditService{store: store, publisher: publisher, logger: logger}
}

// Record appends the event and publishes it. Publishing happens even when
// persistence fails so the board never goes stale.
func (s *AuditService) Record(eventType, aggregateType, aggregateID, actor string, metadata map[string]interface{}) error {
	return s.RecordAt(time.Time{}, eventType, aggregateType, aggregateID, actor, metadata)
}

// RecordAt is Record with the change stamped at the given time. A zero time
// leaves stamping to the store.
func (s *AuditService) RecordAt(at time.Time, eventType, aggregateType, aggregateID, actor string, metadata map[string]interface{}) error {
	event := events.NewEvent(eventType, aggregateType, aggregateID, actor, metadata)
	event.Timestamp = at

	var err error
	if s.store != nil {
		if err = s.store.Append(event); err != nil {
			s.logger.Error("failed to append audit event", "type", eventType, "aggregate_id", aggregateID, "error", err)
			err = fmt.Errorf("failed to record %s: %w", eventType, err)
		}
	}
	if s.publisher != nil {
		_ = s.publisher.Publish(event)
	}
	return err
}

// Query returns the trail entries matching f, oldest first.
func (s *AuditService) Query(f events.Filter) ([]*events.BaseEvent, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.Query(f)
}

func (s *AuditService) VerifyIntegrity() ([]events.Violation, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.Verify()
}
