// Package booking contains handlers, services and structures used to manage the
// clinic appointments: slot validation, the appointment lifecycle and the
// completion of an encounter with its health-history record.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"clinic-booking/internal/apierrors"
	"clinic-booking/internal/auth"
	"clinic-booking/internal/database"
	"clinic-booking/internal/logging"
	"clinic-booking/internal/notification"

	"github.com/google/uuid"
)

// Booker determines the methods available to patients to manage their slots.
type Booker interface {

	// Book validates the candidate slot and creates a new appointment for the patient.
	Book(ctx context.Context, user auth.User, request AppointmentRequest) (*Appointment, error)

	// Reschedule moves an appointment owned by the patient to a new validated slot.
	Reschedule(ctx context.Context, user auth.User, appointmentUUID uuid.UUID, request RescheduleRequest) (*Appointment, error)

	// Cancel cancels an appointment. Admins may cancel any, patients their own and
	// doctors the appointments assigned to them.
	Cancel(ctx context.Context, user auth.User, appointmentUUID uuid.UUID) (*Appointment, error)
}

// Manager determines the methods available to doctors to drive the appointment lifecycle.
type Manager interface {

	// UpdateStatus sets the lifecycle state of an appointment owned by the doctor.
	UpdateStatus(ctx context.Context, user auth.User, appointmentUUID uuid.UUID, request StatusRequest) (*Appointment, error)

	// Complete finalizes a booked appointment and records the clinical outcome,
	// atomically.
	Complete(ctx context.Context, user auth.User, appointmentUUID uuid.UUID, request CompletionRequest) (*CompletedAppointment, error)
}

// Reader determines the methods available to read appointments.
type Reader interface {

	// GetAppointment returns the appointment with its doctor and patient attached.
	GetAppointment(ctx context.Context, user auth.User, appointmentUUID uuid.UUID) (*Appointment, error)

	// ListForDoctor returns the booked and completed appointments of the calling doctor.
	ListForDoctor(ctx context.Context, user auth.User) ([]*Appointment, error)

	// ListForPatient returns all appointments of the calling patient.
	ListForPatient(ctx context.Context, user auth.User) ([]*Appointment, error)

	// ListAll returns every appointment, for administrative listings.
	ListAll(ctx context.Context) ([]*Appointment, error)
}

// Service determines the methods used to manage the clinic appointments.
type Service interface {
	Booker
	Manager
	Reader
}

type defaultService struct {
	repository Repository
	sender     notification.Sender
	logger     *log.Logger
	now        func() time.Time
}

// NewService creates a new booking service.
func NewService(logger *log.Logger, dbConn database.Connection, sender notification.Sender) Service {
	return &defaultService{
		repository: newRepository(dbConn),
		sender:     sender,
		logger:     logger,
		now:        time.Now,
	}
}

// notify dispatches a message to the patient without blocking the calling
// operation. Delivery failures are logged and never surfaced.
func (d defaultService) notify(email, subject, htmlBody string) {
	if email == "" {
		return
	}
	go func() {
		if err := d.sender.Send(email, subject, htmlBody); err != nil {
			logging.PrintlnWarn(d.logger, fmt.Sprint("could not notify ", email, ": ", err))
		}
	}()
}

func (d defaultService) logSkippedRanges(doctor *Doctor, skipped []string) {
	if doctor == nil || len(skipped) == 0 {
		return
	}
	logging.PrintlnWarn(d.logger, fmt.Sprintf("doctor %s has malformed unavailable ranges %v", doctor.UUID, skipped))
}

func (d defaultService) Book(ctx context.Context, user auth.User, request AppointmentRequest) (*Appointment, error) {
	if user.Role != auth.PatientRole {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrOnlyPatientCanBook), apierrors.WithHTTPStatusCode(http.StatusForbidden))
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}
	doctor, err := d.repository.FindDoctorByUUID(ctx, request.DoctorUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	var existing []*Appointment
	if doctor != nil {
		existing, err = d.repository.ListDayAppointments(ctx, doctor.ID, request.Date)
		if err != nil {
			return nil, fmt.Errorf("an unexpected error occurred: %w", err)
		}
	}
	cand := candidateSlot{Date: request.Date, Start: request.Start, End: request.End}
	end, skipped, err := checkSlot(doctor, existing, cand, d.now())
	d.logSkippedRanges(doctor, skipped)
	if err != nil {
		return nil, err
	}
	now := d.now().UTC()
	appointment := &Appointment{
		UUID:      uuid.New(),
		DoctorID:  doctor.ID,
		PatientID: user.ID,
		Date:      request.Date,
		Start:     request.Start,
		End:       end,
		Status:    StatusBooked,
		Price:     doctor.ConsultationFee,
		Notes:     request.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = d.repository.CreateAppointment(ctx, appointment); err != nil {
		if errors.Is(err, errConflictingSlot) {
			return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrSlotTaken), apierrors.WithHTTPStatusCode(http.StatusConflict))
		}
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	d.notify(user.Email, "Appointment confirmed",
		fmt.Sprintf("<p>Hello %s,</p><p>your appointment on %s at %s was booked.</p>", user.Name, appointment.Date, appointment.Start))
	return appointment, nil
}

func (d defaultService) Reschedule(ctx context.Context, user auth.User, appointmentUUID uuid.UUID, request RescheduleRequest) (*Appointment, error) {
	appointment, err := d.repository.FindAppointmentByUUID(ctx, appointmentUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if appointment == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrAppointmentNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	if appointment.PatientID != user.ID {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrNotAppointmentOwner), apierrors.WithHTTPStatusCode(http.StatusForbidden))
	}
	if err = request.Validate(); err != nil {
		return nil, err
	}
	doctor, err := d.repository.FindDoctorByID(ctx, appointment.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	var existing []*Appointment
	if doctor != nil {
		sameDay, err := d.repository.ListDayAppointments(ctx, doctor.ID, request.Date)
		if err != nil {
			return nil, fmt.Errorf("an unexpected error occurred: %w", err)
		}
		for _, other := range sameDay {
			if other.ID != appointment.ID {
				existing = append(existing, other)
			}
		}
	}
	cand := candidateSlot{Date: request.Date, Start: request.Start, End: request.End}
	end, skipped, err := checkSlot(doctor, existing, cand, d.now())
	d.logSkippedRanges(doctor, skipped)
	if err != nil {
		return nil, err
	}
	appointment.Date = request.Date
	appointment.Start = request.Start
	appointment.End = end
	appointment.Status = StatusBooked
	appointment.UpdatedAt = d.now().UTC()
	if err = d.repository.RescheduleAppointment(ctx, appointment); err != nil {
		if errors.Is(err, errConflictingSlot) {
			return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrSlotTaken), apierrors.WithHTTPStatusCode(http.StatusConflict))
		}
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return appointment, nil
}

// canCancel applies the role-based cancellation rules.
func (d defaultService) canCancel(ctx context.Context, user auth.User, appointment *Appointment) (bool, error) {
	switch user.Role {
	case auth.AdminRole:
		return true, nil
	case auth.PatientRole:
		return appointment.PatientID == user.ID, nil
	case auth.DoctorRole:
		doctor, err := d.repository.FindDoctorByUserID(ctx, user.ID)
		if err != nil {
			return false, err
		}
		return doctor != nil && doctor.ID == appointment.DoctorID, nil
	}
	return false, nil
}

func (d defaultService) Cancel(ctx context.Context, user auth.User, appointmentUUID uuid.UUID) (*Appointment, error) {
	appointment, err := d.repository.FindAppointmentByUUID(ctx, appointmentUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if appointment == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrAppointmentNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	authorized, err := d.canCancel(ctx, user, appointment)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if !authorized {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrCancelNotAllowed), apierrors.WithHTTPStatusCode(http.StatusForbidden))
	}
	// Cancelling twice is a no-op.
	if appointment.Status == StatusCancelled {
		return appointment, nil
	}
	if appointment.Status == StatusCompleted {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrStatusFinal), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}
	if err = d.repository.UpdateAppointmentStatus(ctx, appointment.ID, StatusCancelled); err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	appointment.Status = StatusCancelled
	if patient, err := d.repository.FindPatientByID(ctx, appointment.PatientID); err != nil {
		logging.PrintlnWarn(d.logger, fmt.Sprint("could not load patient for notification: ", err))
	} else if patient != nil {
		d.notify(patient.Email, "Appointment cancelled",
			fmt.Sprintf("<p>Hello %s,</p><p>your appointment on %s at %s was cancelled.</p>", patient.Name, appointment.Date, appointment.Start))
	}
	return appointment, nil
}

func (d defaultService) UpdateStatus(ctx context.Context, user auth.User, appointmentUUID uuid.UUID, request StatusRequest) (*Appointment, error) {
	appointment, err := d.repository.FindAppointmentByUUID(ctx, appointmentUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if appointment == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrAppointmentNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	doctor, err := d.repository.FindDoctorByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if doctor == nil || doctor.ID != appointment.DoctorID {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrNotAppointmentDoctor), apierrors.WithHTTPStatusCode(http.StatusForbidden))
	}
	if err = request.Validate(); err != nil {
		return nil, err
	}
	if appointment.Status.Terminal() {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrStatusFinal), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}
	if err = d.repository.UpdateAppointmentStatus(ctx, appointment.ID, request.Status); err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	appointment.Status = request.Status
	return appointment, nil
}

func (d defaultService) Complete(ctx context.Context, user auth.User, appointmentUUID uuid.UUID, request CompletionRequest) (*CompletedAppointment, error) {
	appointment, err := d.repository.FindAppointmentByUUID(ctx, appointmentUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if appointment == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrAppointmentNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	doctor, err := d.repository.FindDoctorByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if doctor == nil || doctor.ID != appointment.DoctorID {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrNotAppointmentDoctor), apierrors.WithHTTPStatusCode(http.StatusForbidden))
	}
	if err = request.Validate(); err != nil {
		return nil, err
	}
	if appointment.Status != StatusBooked {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrNotActive), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}
	now := d.now().UTC()
	appointment.UpdatedAt = now
	history := &HealthHistory{
		UUID:          uuid.New(),
		PatientID:     appointment.PatientID,
		DoctorID:      sql.NullInt64{Int64: doctor.ID, Valid: true},
		AppointmentID: sql.NullInt64{Int64: appointment.ID, Valid: true},
		Diagnosis:     request.Diagnosis,
		Treatment:     request.Treatment,
		Notes:         request.Notes,
		CreatedAt:     now,
	}
	if err = d.repository.CompleteAppointment(ctx, appointment, history); err != nil {
		if errors.Is(err, errAppointmentNotActive) {
			return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrNotActive), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
		}
		return nil, fmt.Errorf("completion transaction failed: %w", err)
	}
	appointment.Status = StatusCompleted
	return &CompletedAppointment{Appointment: appointment, History: history}, nil
}

func (d defaultService) GetAppointment(ctx context.Context, user auth.User, appointmentUUID uuid.UUID) (*Appointment, error) {
	appointment, err := d.repository.FindAppointmentByUUID(ctx, appointmentUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if appointment == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrAppointmentNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	if appointment.Doctor, err = d.repository.FindDoctorByID(ctx, appointment.DoctorID); err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if appointment.Patient, err = d.repository.FindPatientByID(ctx, appointment.PatientID); err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return appointment, nil
}

func (d defaultService) ListForDoctor(ctx context.Context, user auth.User) ([]*Appointment, error) {
	doctor, err := d.repository.FindDoctorByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if doctor == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidDoctor), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	return d.repository.ListDoctorAppointments(ctx, doctor.ID)
}

func (d defaultService) ListForPatient(ctx context.Context, user auth.User) ([]*Appointment, error) {
	return d.repository.ListPatientAppointments(ctx, user.ID)
}

func (d defaultService) ListAll(ctx context.Context) ([]*Appointment, error) {
	return d.repository.ListAllAppointments(ctx)
}
