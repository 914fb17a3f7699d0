package cron

import (
	"context"
	"log/slog"
	"time"
)

const FollowupReminderJobName = "followup-reminders"

// FollowupReminderSender is the part of the CRM service the reminder job drives.
type FollowupReminderSender interface {
	SendFollowupReminders(ctx context.Context) (int, error)
}

// RegisterFollowupReminders schedules reminder emails for followups coming due.
func RegisterFollowupReminders(s *Scheduler, sender FollowupReminderSender, interval time.Duration) {
	s.AddJob(FollowupReminderJobName, interval, func(ctx context.Context) error {
		sent, err := sender.SendFollowupReminders(ctx)
		if err != nil {
			return err
		}
		if sent > 0 {
			slog.Info("Followup reminders sent", "count", sent)
		}
		return nil
	})
}
