package peripheral

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Line formats for Monitor, one per device kind.
const (
	AudioLineFormat   = "dbReg0: %5d  dbReg1: %5d  dbReg2: %5d"
	CompassLineFormat = "x: %6d  y: %6d  z: %6d"
)

// Channel pairs a started device with the format of its readings. Format
// receives X, Y and Z in that order.
type Channel struct {
	Device Device
	Format string
}

// Monitor polls every channel once per interval and rewrites a single status
// line on w until ctx is done. A poll or write failure ends the loop.
func Monitor(ctx context.Context, w io.Writer, interval time.Duration, channels ...Channel) error {
	if len(channels) == 0 {
		return fmt.Errorf("monitor: no channels")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	parts := make([]string, len(channels))
	for {
		for i, ch := range channels {
			r, err := ch.Device.Poll()
			if err != nil {
				fmt.Fprint(w, "\r\n")
				return fmt.Errorf("monitor: channel %d: %w", i, err)
			}
			parts[i] = fmt.Sprintf(ch.Format, r.X, r.Y, r.Z)
		}
		if _, err := fmt.Fprintf(w, "\r%s", strings.Join(parts, "  ")); err != nil {
			return err
		}
		if ctx.Err() == nil {
			select {
			case <-ctx.Done():
			case <-ticker.C:
				continue
			}
		}
		_, err := fmt.Fprint(w, "\r\n")
		return err
	}
}
