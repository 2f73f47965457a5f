package reminder

import (
	"context"
	"time"

	"clinic-booking/internal/database"
	"clinic-booking/internal/schedule"

	"github.com/google/uuid"
)

const (
	listDueRemindersQuery = "SELECT a.id, a.uuid, u.name, u.email, a.date, a.start_time FROM tb_appointment a JOIN tb_user u ON u.id = a.patient_id WHERE a.status = 'booked' AND a.deleted = FALSE AND a.reminder_sent = FALSE AND u.deleted = FALSE AND a.date + a.start_time >= $1 AND a.date + a.start_time < $2"
	markRemindedQuery     = "UPDATE tb_appointment SET reminder_sent = TRUE WHERE id = $1"
)

// Reminder is a due appointment joined with its patient contact data.
type Reminder struct {
	AppointmentID   int64          `dbfield:"id"`
	AppointmentUUID uuid.UUID      `dbfield:"uuid"`
	PatientName     string         `dbfield:"name"`
	PatientEmail    string         `dbfield:"email"`
	Date            schedule.Date  `dbfield:"date"`
	Start           schedule.Clock `dbfield:"start_time"`
}

// Repository provides access to reminder data.
type Repository interface {

	// ListDueReminders returns the booked appointments starting inside the given
	// window whose reminder was not sent yet.
	ListDueReminders(ctx context.Context, windowStart time.Time, windowEnd time.Time) ([]*Reminder, error)

	// MarkReminded flags the appointment so its reminder is not sent twice.
	MarkReminded(ctx context.Context, appointmentID int64) error
}

type defaultRepository struct {
	dbConn database.Connection
}

// newRepository creates a new Repository.
func newRepository(dbConn database.Connection) Repository {
	return &defaultRepository{dbConn: dbConn}
}

func (d defaultRepository) ListDueReminders(ctx context.Context, windowStart time.Time, windowEnd time.Time) ([]*Reminder, error) {
	rows, err := d.dbConn.DB().QueryContext(ctx, listDueRemindersQuery, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	reminders := make([]*Reminder, 0)
	for rows.Next() {
		reminder := new(Reminder)
		if err = database.TransformRow(rows, reminder); err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, nil
}

func (d defaultRepository) MarkReminded(ctx context.Context, appointmentID int64) error {
	_, err := d.dbConn.DB().ExecContext(ctx, markRemindedQuery, appointmentID)
	return err
}
