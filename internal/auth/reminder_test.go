// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

/*
TestUntilNextReminder verifies the schedule always lands on the next Monday
12:00 UTC strictly after the reference instant.
*/
func TestUntilNextReminder(t *testing.T) {
	// 2026-03-02 is a Monday.
	monday := time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{"sunday_evening", monday.Add(-16 * time.Hour), 16 * time.Hour},
		{"monday_morning", monday.Add(-2 * time.Hour), 2 * time.Hour},
		{"exactly_at_fire_time", monday, 7 * 24 * time.Hour},
		{"monday_afternoon", monday.Add(3 * time.Hour), 7*24*time.Hour - 3*time.Hour},
		{"wednesday", monday.AddDate(0, 0, 2), 5 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := untilNextReminder(tt.now)

			assert.Equal(t, tt.want, got)

			// The computed instant must be a Monday at 12:00 UTC.
			next := tt.now.Add(got)
			assert.Equal(t, time.Monday, next.Weekday())
			assert.Equal(t, 12, next.Hour())
			assert.Equal(t, 0, next.Minute())
			assert.True(t, next.After(tt.now))
		})
	}
}
