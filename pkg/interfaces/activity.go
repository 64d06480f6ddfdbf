package interfaces

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
)

// ActivityRecord mirrors the go-users activity record contract so account
// events can be forwarded to any go-users compatible sink.
type ActivityRecord = usertypes.ActivityRecord

// ActivitySink captures activity events emitted by the user service.
type ActivitySink interface {
	Log(ctx context.Context, record ActivityRecord) error
}
