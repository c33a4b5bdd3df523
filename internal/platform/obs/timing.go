package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

// PollIDKey carries the id of the poll a request belongs to.
const PollIDKey ctxKey = "poll_id"

// WithPollID tags ctx with a poll id for log correlation.
func WithPollID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, PollIDKey, id)
}

// PollID returns the poll id carried by ctx, or "".
func PollID(ctx context.Context) string {
	id, _ := ctx.Value(PollIDKey).(string)
	return id
}

// Time logs the duration of op when the returned func is called. A non-nil
// error behind errp turns the line into an ERROR carrying it.
func Time(ctx context.Context, op string) func(errp *error) {
	start := time.Now()
	pollID := PollID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("ERROR: poll_id=%s op=%s dur=%dms err=%v", pollID, op, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("INFO: poll_id=%s op=%s dur=%dms", pollID, op, dur.Milliseconds())
	}
}
