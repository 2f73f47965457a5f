// Package doctor contains handlers, services and structures used to manage the
// doctor side of the clinic: weekly working hours, unavailable ranges and the
// patients health history.
package doctor

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"clinic-booking/internal/apierrors"
	"clinic-booking/internal/auth"
	"clinic-booking/internal/database"
	"clinic-booking/internal/logging"
	"clinic-booking/internal/schedule"

	"github.com/google/uuid"
)

// Reader determines the read methods available on doctors.
type Reader interface {

	// GetDoctor returns the public profile of a doctor, with its decoded weekly
	// hours and active unavailable ranges.
	GetDoctor(ctx context.Context, doctorUUID uuid.UUID) (*Profile, error)
}

// Writer determines the methods available to doctors to manage their own record.
type Writer interface {

	// UpdateSchedule replaces the weekly working hours and, when given, the
	// consultation fee of the calling doctor.
	UpdateSchedule(ctx context.Context, user auth.User, request ScheduleUpdateRequest) (*Profile, error)

	// AddUnavailable registers a new unavailable range for the calling doctor.
	AddUnavailable(ctx context.Context, user auth.User, request UnavailableRequest) (*UnavailableEntry, error)

	// CancelUnavailable soft-deletes an unavailable range of the calling doctor.
	CancelUnavailable(ctx context.Context, user auth.User, rangeKey string) (*UnavailableEntry, error)

	// AddHealthHistory records a clinical entry for a patient.
	AddHealthHistory(ctx context.Context, user auth.User, request HealthHistoryRequest) (*HealthHistory, error)
}

// Service determines the methods used to manage doctors.
type Service interface {
	Reader
	Writer
}

type defaultService struct {
	repository Repository
	logger     *log.Logger
	now        func() time.Time
}

// NewService creates a new doctor service.
func NewService(logger *log.Logger, dbConn database.Connection) Service {
	return &defaultService{repository: newRepository(dbConn), logger: logger, now: time.Now}
}

// ownDoctor loads the doctor record of the authenticated user.
func (d defaultService) ownDoctor(ctx context.Context, user auth.User) (*Doctor, error) {
	doctor, err := d.repository.FindDoctorByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if doctor == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrNoDoctorProfile), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	return doctor, nil
}

// unavailability decodes the stored unavailable ranges of the doctor, logging
// the entries that could not be parsed.
func (d defaultService) unavailability(doctor *Doctor) (schedule.Unavailability, error) {
	if !doctor.UnavailableDates.Valid || doctor.UnavailableDates.String == "" {
		return make(schedule.Unavailability), nil
	}
	ranges, skipped, err := schedule.ParseUnavailability(doctor.UnavailableDates.String)
	if err != nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrMalformedAvailability), apierrors.WithHTTPStatusCode(http.StatusInternalServerError))
	}
	if len(skipped) > 0 {
		logging.PrintlnWarn(d.logger, fmt.Sprintf("doctor %s has malformed unavailable ranges %v", doctor.UUID, skipped))
	}
	return ranges, nil
}

func (d defaultService) GetDoctor(ctx context.Context, doctorUUID uuid.UUID) (*Profile, error) {
	doctor, err := d.repository.FindDoctorByUUID(ctx, doctorUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if doctor == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrDoctorNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	profile := &Profile{UUID: doctor.UUID, Name: doctor.Name, ConsultationFee: doctor.ConsultationFee}
	if doctor.Clocks.Valid && doctor.Clocks.String != "" {
		weekly, err := schedule.ParseWeekly(doctor.Clocks.String)
		if err != nil {
			logging.PrintlnWarn(d.logger, fmt.Sprintf("doctor %s has a malformed weekly schedule: %v", doctor.UUID, err))
		} else {
			profile.Clocks = weekly
		}
	}
	ranges, err := d.unavailability(doctor)
	if err != nil {
		return nil, err
	}
	for key, r := range ranges {
		if r.Deleted {
			continue
		}
		profile.Unavailable = append(profile.Unavailable, UnavailableEntry{Key: key, StartDate: r.StartDate, EndDate: r.EndDate, Reason: r.Reason})
	}
	return profile, nil
}

func (d defaultService) UpdateSchedule(ctx context.Context, user auth.User, request ScheduleUpdateRequest) (*Profile, error) {
	doctor, err := d.ownDoctor(ctx, user)
	if err != nil {
		return nil, err
	}
	if err = request.Validate(); err != nil {
		return nil, err
	}
	encoded, err := request.Clocks.Encode()
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	fee := doctor.ConsultationFee
	if request.ConsultationFee != nil {
		fee = *request.ConsultationFee
	}
	if err = d.repository.UpdateSchedule(ctx, doctor.ID, encoded, fee); err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return &Profile{UUID: doctor.UUID, Name: doctor.Name, ConsultationFee: fee, Clocks: request.Clocks}, nil
}

func (d defaultService) AddUnavailable(ctx context.Context, user auth.User, request UnavailableRequest) (*UnavailableEntry, error) {
	doctor, err := d.ownDoctor(ctx, user)
	if err != nil {
		return nil, err
	}
	if err = request.Validate(); err != nil {
		return nil, err
	}
	ranges, err := d.unavailability(doctor)
	if err != nil {
		return nil, err
	}
	unavailableRange := schedule.UnavailableRange{StartDate: request.StartDate, EndDate: request.EndDate, Reason: request.Reason}
	key := ranges.Add(unavailableRange)
	doc, err := ranges.Encode()
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if err = d.repository.UpdateUnavailableDates(ctx, doctor.ID, doc); err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return &UnavailableEntry{Key: key, StartDate: unavailableRange.StartDate, EndDate: unavailableRange.EndDate, Reason: unavailableRange.Reason}, nil
}

func (d defaultService) CancelUnavailable(ctx context.Context, user auth.User, rangeKey string) (*UnavailableEntry, error) {
	doctor, err := d.ownDoctor(ctx, user)
	if err != nil {
		return nil, err
	}
	ranges, err := d.unavailability(doctor)
	if err != nil {
		return nil, err
	}
	today := schedule.DateOf(d.now())
	if err = ranges.Cancel(rangeKey, today); err != nil {
		switch err {
		case schedule.ErrRangeNotFound:
			return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrRangeNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
		case schedule.ErrRangeCancelled:
			return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrRangeCancelled), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
		case schedule.ErrRangePast:
			return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrRangePast), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
		}
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	doc, err := ranges.Encode()
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if err = d.repository.UpdateUnavailableDates(ctx, doctor.ID, doc); err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	cancelled := ranges[rangeKey]
	return &UnavailableEntry{Key: rangeKey, StartDate: cancelled.StartDate, EndDate: cancelled.EndDate, Reason: cancelled.Reason, Deleted: cancelled.Deleted}, nil
}

func (d defaultService) AddHealthHistory(ctx context.Context, user auth.User, request HealthHistoryRequest) (*HealthHistory, error) {
	doctor, err := d.ownDoctor(ctx, user)
	if err != nil {
		return nil, err
	}
	if err = request.Validate(); err != nil {
		return nil, err
	}
	patient, err := d.repository.FindPatientByUUID(ctx, request.PatientUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if patient == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrPatientNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	history := &HealthHistory{
		UUID:      uuid.New(),
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Diagnosis: request.Diagnosis,
		Treatment: request.Treatment,
		Notes:     request.Notes,
		CreatedAt: d.now().UTC(),
	}
	if err = d.repository.CreateHealthHistory(ctx, history); err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return history, nil
}
