package sink

import (
	"context"

	"anpr-crossing/internal/domain/anpr"
	"anpr-crossing/internal/domain/port"
)

// FanOut hands every record to each sink in order.
type FanOut []port.RecordSink

func (f FanOut) Append(ctx context.Context, record anpr.PlateRecord) {
	for _, s := range f {
		s.Append(ctx, record)
	}
}
