package booking

import (
	"fmt"
	"net/http"
	"time"

	"clinic-booking/internal/apierrors"
	"clinic-booking/internal/schedule"
)

// defaultSlotLength is applied when a candidate slot has no explicit end.
const defaultSlotLength = time.Hour

// candidateSlot is the slot shape shared by bookings and reschedules.
type candidateSlot struct {
	Date  schedule.Date
	Start schedule.Clock
	End   *schedule.Clock
}

// checkSlot decides whether a candidate slot can be booked with the given
// doctor. It runs the checks in order, stopping at the first failure: past
// date, past time, doctor existence, unavailable ranges, working hours and
// finally overlap against the existing non-cancelled appointments of the same
// doctor and date. On acceptance it returns the computed slot end, defaulting
// to one hour after start when the candidate has none, together with the keys
// of any malformed unavailable ranges skipped so the caller can log them.
func checkSlot(doctor *Doctor, existing []*Appointment, cand candidateSlot, now time.Time) (schedule.Clock, []string, error) {
	var zeroClock schedule.Clock

	today := schedule.DateOf(now)
	if cand.Date.Before(today) {
		return zeroClock, nil, apierrors.NewAPIError(apierrors.WithDetail(ErrPastDate), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}
	if cand.Date.Equal(today) && cand.Start.Minutes() <= schedule.ClockOf(now).Minutes() {
		return zeroClock, nil, apierrors.NewAPIError(apierrors.WithDetail(ErrPastTime), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}

	if doctor == nil {
		return zeroClock, nil, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidDoctor), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}

	var skipped []string
	if doctor.UnavailableDates.Valid && doctor.UnavailableDates.String != "" {
		ranges, skippedKeys, err := schedule.ParseUnavailability(doctor.UnavailableDates.String)
		if err != nil {
			return zeroClock, nil, apierrors.NewAPIError(apierrors.WithDetail(ErrMalformedAvailability), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
		}
		skipped = skippedKeys
		if ranges.Covers(cand.Date) {
			return zeroClock, skipped, apierrors.NewAPIError(apierrors.WithDetail(ErrDoctorUnavailable), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
		}
	}

	if !doctor.Clocks.Valid || doctor.Clocks.String == "" {
		return zeroClock, skipped, apierrors.NewAPIError(apierrors.WithDetail(ErrNoWorkingHours), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}
	weekly, err := schedule.ParseWeekly(doctor.Clocks.String)
	if err != nil {
		return zeroClock, skipped, apierrors.NewAPIError(apierrors.WithDetail(ErrMalformedSchedule), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}
	interval, err := weekly.WorkingHours(cand.Date)
	if err != nil {
		return zeroClock, skipped, apierrors.NewAPIError(apierrors.WithDetail(ErrMalformedSchedule), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}
	if interval == nil {
		return zeroClock, skipped, apierrors.NewAPIError(apierrors.WithDetail(ErrClosedWeekday), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}

	end := cand.Start.Add(defaultSlotLength)
	if cand.End != nil {
		end = *cand.End
	}
	if cand.Start.Before(interval.Start) || end.After(interval.End) {
		detail := fmt.Sprintf("%s: %s - %s", ErrOutsideWorkingHours, interval.Start, interval.End)
		return zeroClock, skipped, apierrors.NewAPIError(apierrors.WithDetail(detail), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}

	for _, appointment := range existing {
		if appointment.Status == StatusCancelled {
			continue
		}
		if cand.Start.Minutes() < appointment.End.Minutes() && end.Minutes() > appointment.Start.Minutes() {
			return zeroClock, skipped, apierrors.NewAPIError(apierrors.WithDetail(ErrSlotTaken), apierrors.WithHTTPStatusCode(http.StatusConflict))
		}
	}

	return end, skipped, nil
}
