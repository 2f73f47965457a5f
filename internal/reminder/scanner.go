// Package reminder periodically scans upcoming appointments and notifies the
// patients about the ones starting in roughly one day.
package reminder

import (
	"context"
	"fmt"
	"log"
	"time"

	"clinic-booking/internal/database"
	"clinic-booking/internal/logging"
	"clinic-booking/internal/notification"

	"github.com/robfig/cron/v3"
)

// reminderLead is how far ahead of the appointment the reminder is sent. The
// sweep runs hourly and picks the appointments starting inside the hour that
// begins at now plus the lead.
const reminderLead = 24 * time.Hour

// Scanner sweeps the booked appointments every hour and sends a reminder to
// the patients whose appointment starts about one day ahead.
type Scanner struct {
	repository Repository
	sender     notification.Sender
	logger     *log.Logger
	cron       *cron.Cron
	now        func() time.Time
}

// NewScanner creates a new reminder Scanner.
func NewScanner(logger *log.Logger, dbConn database.Connection, sender notification.Sender) *Scanner {
	return &Scanner{
		repository: newRepository(dbConn),
		sender:     sender,
		logger:     logger,
		cron:       cron.New(),
		now:        time.Now,
	}
}

// Start schedules the hourly sweep.
func (s *Scanner) Start() error {
	_, err := s.cron.AddFunc("@hourly", func() {
		if err := s.Sweep(context.Background()); err != nil {
			logging.PrintlnError(s.logger, fmt.Sprint("reminder sweep failed: ", err))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scanner) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep sends a reminder for each booked appointment starting inside the
// current reminder window. A delivery failure leaves the appointment unmarked
// so the next sweep retries it.
func (s *Scanner) Sweep(ctx context.Context) error {
	windowStart := s.now().UTC().Add(reminderLead)
	windowEnd := windowStart.Add(time.Hour)
	reminders, err := s.repository.ListDueReminders(ctx, windowStart, windowEnd)
	if err != nil {
		return err
	}
	for _, reminder := range reminders {
		body := fmt.Sprintf("<p>Hello %s,</p><p>this is a reminder of your appointment on %s at %s.</p>",
			reminder.PatientName, reminder.Date, reminder.Start)
		if err = s.sender.Send(reminder.PatientEmail, "Appointment reminder", body); err != nil {
			logging.PrintlnWarn(s.logger, fmt.Sprint("could not remind ", reminder.PatientEmail, " about appointment ", reminder.AppointmentUUID, ": ", err))
			continue
		}
		if err = s.repository.MarkReminded(ctx, reminder.AppointmentID); err != nil {
			logging.PrintlnError(s.logger, fmt.Sprint("could not mark appointment ", reminder.AppointmentUUID, " as reminded: ", err))
		}
	}
	return nil
}
