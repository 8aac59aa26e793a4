package notify

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextCronDuration parses a 5-field cron expression and returns the duration
// until the next fire time. Returns 0 on parse error.
func NextCronDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	next := sched.Next(time.Now())
	d := time.Until(next)
	if d < 0 {
		return 0
	}
	return d
}

// RunDigestSchedule blocks, sending the capacity digest for teamID at each
// fire time of expr until ctx is cancelled. An unparseable expression returns
// immediately.
func RunDigestSchedule(ctx context.Context, db *gorm.DB, d *Dispatcher, expr, teamID string) {
	if _, err := cronParser.Parse(expr); err != nil {
		log.Printf("notify: digest schedule %q: %v", expr, err)
		return
	}
	for {
		wait := NextCronDuration(expr)
		if wait == 0 {
			wait = time.Minute
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		report, err := BuildDigest(db, teamID)
		if err != nil {
			log.Printf("notify: build digest: %v", err)
			continue
		}
		d.Send(ctx, FormatDigest(*report))
	}
}
