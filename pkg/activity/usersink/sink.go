// Package usersink provides go-users compatible activity sinks for account
// events.
package usersink

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// LogSink writes each record as a structured log line.
type LogSink struct {
	Logger interfaces.Logger
}

func (s LogSink) Log(ctx context.Context, record interfaces.ActivityRecord) error {
	if s.Logger == nil || record.Verb == "" {
		return nil
	}
	fields := []any{
		"object_type", record.ObjectType,
		"object_id", record.ObjectID,
		"channel", record.Channel,
		"occurred_at", record.OccurredAt,
	}
	if record.ActorID != uuid.Nil {
		fields = append(fields, "actor_id", record.ActorID.String())
	}
	if record.UserID != uuid.Nil {
		fields = append(fields, "user_id", record.UserID.String())
	}
	for key, value := range record.Data {
		fields = append(fields, key, value)
	}
	s.Logger.WithContext(ctx).Info(record.Verb, fields...)
	return nil
}

// Multi forwards every record to each sink and joins their errors.
type Multi []interfaces.ActivitySink

func (m Multi) Log(ctx context.Context, record interfaces.ActivityRecord) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Log(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps records in memory.
type Recorder struct {
	Records []interfaces.ActivityRecord
}

func (r *Recorder) Log(_ context.Context, record interfaces.ActivityRecord) error {
	r.Records = append(r.Records, record)
	return nil
}
