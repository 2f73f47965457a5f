package booking

import (
	"database/sql"
	"time"

	"clinic-booking/internal/apierrors"
	"clinic-booking/internal/schedule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an appointment. Completed and cancelled are
// terminal, no further transition is permitted out of them.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s Status) Valid() bool {
	return s == StatusBooked || s == StatusCompleted || s == StatusCancelled
}

// Terminal reports whether the status permits no further transition.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Doctor struct {
	ID               int64           `json:"-" dbfield:"id"`
	UUID             uuid.UUID       `json:"uuid" dbfield:"uuid"`
	UserID           int64           `json:"-" dbfield:"user_id"`
	ConsultationFee  decimal.Decimal `json:"consultation_fee" dbfield:"consultation_fee"`
	Clocks           sql.NullString  `json:"-" dbfield:"clocks"`
	UnavailableDates sql.NullString  `json:"-" dbfield:"unavailable_dates"`
}

type Patient struct {
	ID    int64     `json:"-" dbfield:"id"`
	UUID  uuid.UUID `json:"uuid" dbfield:"uuid"`
	Name  string    `json:"name" dbfield:"name"`
	Email string    `json:"email" dbfield:"email"`
}

type Appointment struct {
	ID        int64           `json:"-" dbfield:"id"`
	UUID      uuid.UUID       `json:"uuid" dbfield:"uuid"`
	DoctorID  int64           `json:"-" dbfield:"doctor_id"`
	PatientID int64           `json:"-" dbfield:"patient_id"`
	Date      schedule.Date   `json:"date" dbfield:"date"`
	Start     schedule.Clock  `json:"start" dbfield:"start_time"`
	End       schedule.Clock  `json:"end" dbfield:"end_time"`
	Status    Status          `json:"status" dbfield:"status"`
	Price     decimal.Decimal `json:"price" dbfield:"price"`
	Notes     string          `json:"notes,omitempty" dbfield:"notes"`
	CreatedAt time.Time       `json:"created_at" dbfield:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" dbfield:"updated_at"`

	Doctor  *Doctor  `json:"doctor,omitempty"`
	Patient *Patient `json:"patient,omitempty"`
}

type HealthHistory struct {
	ID            int64         `json:"-" dbfield:"id"`
	UUID          uuid.UUID     `json:"uuid" dbfield:"uuid"`
	PatientID     int64         `json:"-" dbfield:"patient_id"`
	DoctorID      sql.NullInt64 `json:"-" dbfield:"doctor_id"`
	AppointmentID sql.NullInt64 `json:"-" dbfield:"appointment_id"`
	Diagnosis     string        `json:"diagnosis" dbfield:"diagnosis"`
	Treatment     string        `json:"treatment" dbfield:"treatment"`
	Notes         string        `json:"notes,omitempty" dbfield:"notes"`
	CreatedAt     time.Time     `json:"created_at" dbfield:"created_at"`
}

// AppointmentRequest is a candidate slot submitted by a patient.
type AppointmentRequest struct {
	DoctorUUID uuid.UUID       `json:"doctor_uuid"`
	Date       schedule.Date   `json:"date"`
	Start      schedule.Clock  `json:"start"`
	End        *schedule.Clock `json:"end,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// Validate checks if the given request is valid.
func (a AppointmentRequest) Validate() error {
	if a.DoctorUUID == uuid.Nil {
		return apierrors.NewValidationError("doctor_uuid", "required")
	}
	if a.Date.IsZero() {
		return apierrors.NewValidationError("date", "required")
	}
	if a.Start.IsZero() {
		return apierrors.NewValidationError("start", "required")
	}
	if a.End != nil && !a.Start.Before(*a.End) {
		return apierrors.NewValidationError("end", "must be after start")
	}
	return nil
}

// RescheduleRequest moves an existing appointment to a new slot.
type RescheduleRequest struct {
	Date  schedule.Date   `json:"date"`
	Start schedule.Clock  `json:"start"`
	End   *schedule.Clock `json:"end,omitempty"`
}

// Validate checks if the given request is valid.
func (r RescheduleRequest) Validate() error {
	if r.Date.IsZero() {
		return apierrors.NewValidationError("date", "required")
	}
	if r.Start.IsZero() {
		return apierrors.NewValidationError("start", "required")
	}
	if r.End != nil && !r.Start.Before(*r.End) {
		return apierrors.NewValidationError("end", "must be after start")
	}
	return nil
}

// StatusRequest updates the lifecycle state of an appointment.
type StatusRequest struct {
	Status Status `json:"status"`
}

// Validate checks if the given request is valid.
func (s StatusRequest) Validate() error {
	if !s.Status.Valid() {
		return apierrors.NewValidationError("status", "invalid")
	}
	return nil
}

// CompletionRequest finalizes an appointment with the clinical outcome.
type CompletionRequest struct {
	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment"`
	Notes     string `json:"notes,omitempty"`
}

// Validate checks if the given request is valid.
func (c CompletionRequest) Validate() error {
	if c.Diagnosis == "" {
		return apierrors.NewValidationError("diagnosis", "required")
	}
	if c.Treatment == "" {
		return apierrors.NewValidationError("treatment", "required")
	}
	return nil
}

// CompletedAppointment is the result of a completion, the finalized
// appointment together with the health-history record created for it.
type CompletedAppointment struct {
	Appointment *Appointment   `json:"appointment"`
	History     *HealthHistory `json:"history"`
}
