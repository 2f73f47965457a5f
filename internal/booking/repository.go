package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clinic-booking/internal/database"
	"clinic-booking/internal/schedule"

	"github.com/google/uuid"
)

const (
	findDoctorByUUIDQuery   = "SELECT id, uuid, user_id, consultation_fee, clocks, unavailable_dates FROM tb_doctor WHERE uuid = $1 AND deleted = FALSE"
	findDoctorByIDQuery     = "SELECT id, uuid, user_id, consultation_fee, clocks, unavailable_dates FROM tb_doctor WHERE id = $1 AND deleted = FALSE"
	findDoctorByUserIDQuery = "SELECT id, uuid, user_id, consultation_fee, clocks, unavailable_dates FROM tb_doctor WHERE user_id = $1 AND deleted = FALSE"
	findPatientByIDQuery    = "SELECT id, uuid, name, email FROM tb_user WHERE id = $1 AND deleted = FALSE"

	appointmentColumns = "id, uuid, doctor_id, patient_id, date, start_time, end_time, status, price, notes, created_at, updated_at"

	findAppointmentByUUIDQuery   = "SELECT " + appointmentColumns + " FROM tb_appointment WHERE uuid = $1 AND deleted = FALSE"
	listDayAppointmentsQuery     = "SELECT " + appointmentColumns + " FROM tb_appointment WHERE doctor_id = $1 AND date = $2 AND status <> 'cancelled' AND deleted = FALSE"
	listDoctorAppointmentsQuery  = "SELECT " + appointmentColumns + " FROM tb_appointment WHERE doctor_id = $1 AND status IN ('booked', 'completed') AND deleted = FALSE ORDER BY date, start_time"
	listPatientAppointmentsQuery = "SELECT " + appointmentColumns + " FROM tb_appointment WHERE patient_id = $1 AND deleted = FALSE ORDER BY date, start_time"
	listAllAppointmentsQuery     = "SELECT " + appointmentColumns + " FROM tb_appointment WHERE deleted = FALSE ORDER BY date DESC, start_time"

	overlappingSlotQuery       = "SELECT EXISTS(SELECT 1 FROM tb_appointment WHERE doctor_id = $1 AND date = $2 AND status <> 'cancelled' AND deleted = FALSE AND start_time < $4 AND end_time > $3 AND id <> $5)"
	insertAppointmentQuery     = "INSERT INTO tb_appointment (uuid, doctor_id, patient_id, date, start_time, end_time, status, price, notes, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id"
	rescheduleAppointmentQuery = "UPDATE tb_appointment SET date = $2, start_time = $3, end_time = $4, status = $5, updated_at = $6 WHERE id = $1"
	updateStatusQuery          = "UPDATE tb_appointment SET status = $2, updated_at = $3 WHERE id = $1"
	completeAppointmentQuery   = "UPDATE tb_appointment SET status = 'completed', updated_at = $2 WHERE id = $1 AND status = 'booked'"
	insertHealthHistoryQuery   = "INSERT INTO tb_health_history (uuid, patient_id, doctor_id, appointment_id, diagnosis, treatment, notes, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id"
)

var (
	// errConflictingSlot reports a booking that overlaps an existing one, caught
	// inside the insert transaction.
	errConflictingSlot = errors.New("conflicting appointment")

	// errAppointmentNotActive reports a completion attempted on an appointment
	// that is no longer booked.
	errAppointmentNotActive = errors.New("appointment is not active")
)

// Repository provides access to booking data.
type Repository interface {

	// FindDoctorByUUID finds a non-deleted doctor by its UUID.
	FindDoctorByUUID(ctx context.Context, uuid uuid.UUID) (*Doctor, error)

	// FindDoctorByID finds a non-deleted doctor by its ID.
	FindDoctorByID(ctx context.Context, id int64) (*Doctor, error)

	// FindDoctorByUserID finds the doctor record owned by the given user.
	FindDoctorByUserID(ctx context.Context, userID int64) (*Doctor, error)

	// FindPatientByID finds a patient by its user ID.
	FindPatientByID(ctx context.Context, id int64) (*Patient, error)

	// FindAppointmentByUUID finds a non-deleted appointment by its UUID.
	FindAppointmentByUUID(ctx context.Context, uuid uuid.UUID) (*Appointment, error)

	// ListDayAppointments lists the non-cancelled appointments of a doctor on a date.
	ListDayAppointments(ctx context.Context, doctorID int64, date schedule.Date) ([]*Appointment, error)

	// ListDoctorAppointments lists the booked and completed appointments of a doctor.
	ListDoctorAppointments(ctx context.Context, doctorID int64) ([]*Appointment, error)

	// ListPatientAppointments lists all appointments of a patient.
	ListPatientAppointments(ctx context.Context, patientID int64) ([]*Appointment, error)

	// ListAllAppointments lists every non-deleted appointment.
	ListAllAppointments(ctx context.Context) ([]*Appointment, error)

	// CreateAppointment inserts the appointment, re-checking inside a
	// serializable transaction that no overlapping slot was booked concurrently.
	CreateAppointment(ctx context.Context, appointment *Appointment) error

	// RescheduleAppointment moves the appointment to its new slot, re-checking
	// the overlap inside a serializable transaction.
	RescheduleAppointment(ctx context.Context, appointment *Appointment) error

	// UpdateAppointmentStatus sets the appointment status.
	UpdateAppointmentStatus(ctx context.Context, id int64, status Status) error

	// CompleteAppointment atomically finalizes the appointment and inserts its
	// health-history record. Both succeed or neither does.
	CompleteAppointment(ctx context.Context, appointment *Appointment, history *HealthHistory) error
}

type defaultRepository struct {
	dbConn database.Connection
}

// newRepository creates a new Repository.
func newRepository(dbConn database.Connection) Repository {
	return &defaultRepository{dbConn: dbConn}
}

func (d defaultRepository) findDoctor(ctx context.Context, query string, arg interface{}) (*Doctor, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	doctor := new(Doctor)
	for rows.Next() {
		if err = database.TransformRow(rows, doctor); err != nil {
			return nil, err
		}
		if doctor.ID > 0 {
			return doctor, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) FindDoctorByUUID(ctx context.Context, uuid uuid.UUID) (*Doctor, error) {
	return d.findDoctor(ctx, findDoctorByUUIDQuery, uuid)
}

func (d defaultRepository) FindDoctorByID(ctx context.Context, id int64) (*Doctor, error) {
	return d.findDoctor(ctx, findDoctorByIDQuery, id)
}

func (d defaultRepository) FindDoctorByUserID(ctx context.Context, userID int64) (*Doctor, error) {
	return d.findDoctor(ctx, findDoctorByUserIDQuery, userID)
}

func (d defaultRepository) FindPatientByID(ctx context.Context, id int64) (*Patient, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, findPatientByIDQuery, id)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	patient := new(Patient)
	for rows.Next() {
		if err = database.TransformRow(rows, patient); err != nil {
			return nil, err
		}
		if patient.ID > 0 {
			return patient, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) FindAppointmentByUUID(ctx context.Context, uuid uuid.UUID) (*Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, findAppointmentByUUIDQuery, uuid)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	appointment := new(Appointment)
	for rows.Next() {
		if err = database.TransformRow(rows, appointment); err != nil {
			return nil, err
		}
		if appointment.ID > 0 {
			return appointment, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) listAppointments(ctx context.Context, query string, args ...interface{}) ([]*Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	appointments := make([]*Appointment, 0)
	for rows.Next() {
		appointment := new(Appointment)
		if err = database.TransformRow(rows, appointment); err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}
	return appointments, nil
}

func (d defaultRepository) ListDayAppointments(ctx context.Context, doctorID int64, date schedule.Date) ([]*Appointment, error) {
	return d.listAppointments(ctx, listDayAppointmentsQuery, doctorID, date)
}

func (d defaultRepository) ListDoctorAppointments(ctx context.Context, doctorID int64) ([]*Appointment, error) {
	return d.listAppointments(ctx, listDoctorAppointmentsQuery, doctorID)
}

func (d defaultRepository) ListPatientAppointments(ctx context.Context, patientID int64) ([]*Appointment, error) {
	return d.listAppointments(ctx, listPatientAppointmentsQuery, patientID)
}

func (d defaultRepository) ListAllAppointments(ctx context.Context) ([]*Appointment, error) {
	return d.listAppointments(ctx, listAllAppointmentsQuery)
}

// hasOverlappingSlot checks inside the given transaction whether another
// non-cancelled appointment intersects the candidate interval.
func hasOverlappingSlot(ctx context.Context, tx *sql.Tx, appointment *Appointment, excludeID int64) (bool, error) {
	var exists bool
	row := tx.QueryRowContext(ctx, overlappingSlotQuery, appointment.DoctorID, appointment.Date, appointment.Start, appointment.End, excludeID)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (d defaultRepository) CreateAppointment(ctx context.Context, appointment *Appointment) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	return database.RunInTransaction(ctx, d.dbConn, func(tx *sql.Tx) error {
		overlapping, err := hasOverlappingSlot(ctx, tx, appointment, 0)
		if err != nil {
			return err
		}
		if overlapping {
			return errConflictingSlot
		}
		row := tx.QueryRowContext(ctx, insertAppointmentQuery,
			appointment.UUID, appointment.DoctorID, appointment.PatientID, appointment.Date,
			appointment.Start, appointment.End, appointment.Status, appointment.Price,
			appointment.Notes, appointment.CreatedAt, appointment.UpdatedAt)
		return row.Scan(&appointment.ID)
	})
}

func (d defaultRepository) RescheduleAppointment(ctx context.Context, appointment *Appointment) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	return database.RunInTransaction(ctx, d.dbConn, func(tx *sql.Tx) error {
		overlapping, err := hasOverlappingSlot(ctx, tx, appointment, appointment.ID)
		if err != nil {
			return err
		}
		if overlapping {
			return errConflictingSlot
		}
		result, err := tx.ExecContext(ctx, rescheduleAppointmentQuery,
			appointment.ID, appointment.Date, appointment.Start, appointment.End,
			appointment.Status, appointment.UpdatedAt)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("appointment not rescheduled")
		}
		return nil
	})
}

func (d defaultRepository) UpdateAppointmentStatus(ctx context.Context, id int64, status Status) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, updateStatusQuery, id, status, time.Now().UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("appointment status not updated")
	}
	return nil
}

func (d defaultRepository) CompleteAppointment(ctx context.Context, appointment *Appointment, history *HealthHistory) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	return database.RunInTransaction(ctx, d.dbConn, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, completeAppointmentQuery, appointment.ID, appointment.UpdatedAt)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return errAppointmentNotActive
		}
		row := tx.QueryRowContext(ctx, insertHealthHistoryQuery,
			history.UUID, history.PatientID, history.DoctorID, history.AppointmentID,
			history.Diagnosis, history.Treatment, history.Notes, history.CreatedAt)
		return row.Scan(&history.ID)
	})
}
