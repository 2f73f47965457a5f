package doctor

import (
	"database/sql"
	"time"

	"clinic-booking/internal/apierrors"
	"clinic-booking/internal/schedule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Doctor is the doctor row joined with its user record.
type Doctor struct {
	ID               int64           `dbfield:"id" json:"-"`
	UUID             uuid.UUID       `dbfield:"uuid" json:"uuid"`
	UserID           int64           `dbfield:"user_id" json:"-"`
	Name             string          `dbfield:"name" json:"name"`
	ConsultationFee  decimal.Decimal `dbfield:"consultation_fee" json:"consultationFee"`
	Clocks           sql.NullString  `dbfield:"clocks" json:"-"`
	UnavailableDates sql.NullString  `dbfield:"unavailable_dates" json:"-"`
}

// Patient is the subset of the user record needed to attach clinical entries.
type Patient struct {
	ID    int64     `dbfield:"id" json:"-"`
	UUID  uuid.UUID `dbfield:"uuid" json:"uuid"`
	Name  string    `dbfield:"name" json:"name"`
	Email string    `dbfield:"email" json:"email"`
}

// Profile is the public view of a doctor, with its decoded weekly hours and
// the active unavailable ranges.
type Profile struct {
	UUID            uuid.UUID          `json:"uuid"`
	Name            string             `json:"name"`
	ConsultationFee decimal.Decimal    `json:"consultation_fee"`
	Clocks          schedule.Weekly    `json:"clocks,omitempty"`
	Unavailable     []UnavailableEntry `json:"unavailable_dates,omitempty"`
}

// UnavailableEntry is a stored unavailable range together with its opaque key.
type UnavailableEntry struct {
	Key       string        `json:"key"`
	StartDate schedule.Date `json:"start_date"`
	EndDate   schedule.Date `json:"end_date"`
	Reason    string        `json:"reason,omitempty"`
	Deleted   bool          `json:"deleted"`
}

// HealthHistory is a clinical record added by a doctor to a patient file.
type HealthHistory struct {
	ID        int64     `json:"-"`
	UUID      uuid.UUID `json:"uuid"`
	PatientID int64     `json:"-"`
	DoctorID  int64     `json:"-"`
	Diagnosis string    `json:"diagnosis"`
	Treatment string    `json:"treatment,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ScheduleUpdateRequest carries the weekly working hours and, optionally, a
// new consultation fee.
type ScheduleUpdateRequest struct {
	Clocks          schedule.Weekly  `json:"clocks"`
	ConsultationFee *decimal.Decimal `json:"consultation_fee,omitempty"`
}

// Validate checks if the schedule update request is valid.
func (r ScheduleUpdateRequest) Validate() error {
	if len(r.Clocks) == 0 {
		return apierrors.NewValidationError("clocks", "required")
	}
	if err := r.Clocks.Validate(); err != nil {
		return apierrors.NewValidationError("clocks", err.Error())
	}
	if r.ConsultationFee != nil && r.ConsultationFee.IsNegative() {
		return apierrors.NewValidationError("consultation_fee", "must not be negative")
	}
	return nil
}

// UnavailableRequest carries a new unavailable range.
type UnavailableRequest struct {
	StartDate schedule.Date `json:"start_date"`
	EndDate   schedule.Date `json:"end_date"`
	Reason    string        `json:"reason,omitempty"`
}

// Validate checks if the unavailable range request is valid.
func (r UnavailableRequest) Validate() error {
	unavailableRange := schedule.UnavailableRange{StartDate: r.StartDate, EndDate: r.EndDate, Reason: r.Reason}
	if err := unavailableRange.Validate(); err != nil {
		return apierrors.NewValidationError("unavailable_range", err.Error())
	}
	return nil
}

// HealthHistoryRequest carries a new clinical record for a patient.
type HealthHistoryRequest struct {
	PatientUUID uuid.UUID `json:"patient_uuid"`
	Diagnosis   string    `json:"diagnosis"`
	Treatment   string    `json:"treatment,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// Validate checks if the health history request is valid.
func (r HealthHistoryRequest) Validate() error {
	if r.PatientUUID == uuid.Nil {
		return apierrors.NewValidationError("patient_uuid", "required")
	}
	if r.Diagnosis == "" {
		return apierrors.NewValidationError("diagnosis", "required")
	}
	return nil
}
