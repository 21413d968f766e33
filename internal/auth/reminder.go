// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package auth

import (
	"context"
	"log/slog"
	"time"
)

// reminderWeekday and reminderHourUTC fix the weekly sweep to Mondays at
// 12:00 UTC.
const (
	reminderWeekday = time.Monday
	reminderHourUTC = 12
)

// StartWeeklyReminder launches a background goroutine that invokes
// [Service.SendWeeklyReminders] every Monday at 12:00 UTC.
//
// The goroutine exits when ctx is cancelled. A failed sweep is logged and
// the schedule continues; per-account failures are already isolated inside
// the sweep itself.
func StartWeeklyReminder(ctx context.Context, service *Service, log *slog.Logger) {
	go func() {
		for {
			wait := untilNextReminder(time.Now().UTC())
			timer := time.NewTimer(wait)

			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			log.Info("weekly_reminder_sweep_started")
			if err := service.SendWeeklyReminders(ctx); err != nil {
				log.Error("weekly_reminder_sweep_failed", slog.Any("error", err))
				continue
			}
			log.Info("weekly_reminder_sweep_finished")
		}
	}()
}

// untilNextReminder computes the duration from now until the next Monday
// 12:00 UTC strictly after now.
func untilNextReminder(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), reminderHourUTC, 0, 0, 0, time.UTC)

	daysAhead := (int(reminderWeekday) - int(now.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, daysAhead)

	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}

	return next.Sub(now)
}
