package port

import (
	"context"

	"anpr-crossing/internal/domain/anpr"
)

// RecordSink accepts emitted plate records. Implementations report their own failures.
type RecordSink interface {
	Append(ctx context.Context, record anpr.PlateRecord)
}
