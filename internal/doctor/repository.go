package doctor

import (
	"context"
	"database/sql"

	"clinic-booking/internal/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	doctorColumns = "d.id, d.uuid, d.user_id, u.name, d.consultation_fee, d.clocks, d.unavailable_dates"

	findDoctorByUUIDQuery   = "SELECT " + doctorColumns + " FROM tb_doctor d JOIN tb_user u ON u.id = d.user_id WHERE d.uuid = $1 AND d.deleted = FALSE AND u.deleted = FALSE"
	findDoctorByUserIDQuery = "SELECT " + doctorColumns + " FROM tb_doctor d JOIN tb_user u ON u.id = d.user_id WHERE d.user_id = $1 AND d.deleted = FALSE AND u.deleted = FALSE"

	findPatientByUUIDQuery = "SELECT id, uuid, name, email FROM tb_user WHERE uuid = $1 AND role = 'PATIENT' AND deleted = FALSE"

	updateScheduleQuery    = "UPDATE tb_doctor SET clocks = $2, consultation_fee = $3 WHERE id = $1"
	updateUnavailableQuery = "UPDATE tb_doctor SET unavailable_dates = $2 WHERE id = $1"

	insertHealthHistoryQuery = "INSERT INTO tb_health_history (uuid, patient_id, doctor_id, appointment_id, diagnosis, treatment, notes, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id"
)

// Repository provides access to doctor data.
type Repository interface {

	// FindDoctorByUUID finds a doctor by its UUID.
	FindDoctorByUUID(ctx context.Context, uuid uuid.UUID) (*Doctor, error)

	// FindDoctorByUserID finds the doctor record associated to the given user.
	FindDoctorByUserID(ctx context.Context, userID int64) (*Doctor, error)

	// FindPatientByUUID finds a patient by its UUID.
	FindPatientByUUID(ctx context.Context, uuid uuid.UUID) (*Patient, error)

	// UpdateSchedule persists the weekly hours document and the consultation fee.
	UpdateSchedule(ctx context.Context, doctorID int64, clocks string, fee decimal.Decimal) error

	// UpdateUnavailableDates persists the unavailable ranges document.
	UpdateUnavailableDates(ctx context.Context, doctorID int64, doc string) error

	// CreateHealthHistory inserts a new clinical record.
	CreateHealthHistory(ctx context.Context, history *HealthHistory) error
}

type defaultRepository struct {
	dbConn database.Connection
}

// newRepository creates a new Repository.
func newRepository(dbConn database.Connection) Repository {
	return &defaultRepository{dbConn: dbConn}
}

func (d defaultRepository) findDoctor(ctx context.Context, query string, arg interface{}) (*Doctor, error) {
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
	return d.findDoctor(ctx, findDoctorByUUIDQuery, uuid.String())
}

func (d defaultRepository) FindDoctorByUserID(ctx context.Context, userID int64) (*Doctor, error) {
	return d.findDoctor(ctx, findDoctorByUserIDQuery, userID)
}

func (d defaultRepository) FindPatientByUUID(ctx context.Context, uuid uuid.UUID) (*Patient, error) {
	rows, err := d.dbConn.DB().QueryContext(ctx, findPatientByUUIDQuery, uuid.String())
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

func (d defaultRepository) UpdateSchedule(ctx context.Context, doctorID int64, clocks string, fee decimal.Decimal) error {
	_, err := d.dbConn.DB().ExecContext(ctx, updateScheduleQuery, doctorID, clocks, fee)
	return err
}

func (d defaultRepository) UpdateUnavailableDates(ctx context.Context, doctorID int64, doc string) error {
	_, err := d.dbConn.DB().ExecContext(ctx, updateUnavailableQuery, doctorID, doc)
	return err
}

func (d defaultRepository) CreateHealthHistory(ctx context.Context, history *HealthHistory) error {
	row := d.dbConn.DB().QueryRowContext(ctx, insertHealthHistoryQuery,
		history.UUID.String(),
		history.PatientID,
		history.DoctorID,
		sql.NullInt64{},
		history.Diagnosis,
		history.Treatment,
		history.Notes,
		history.CreatedAt)
	if row.Err() != nil {
		return row.Err()
	}
	return row.Scan(&history.ID)
}
