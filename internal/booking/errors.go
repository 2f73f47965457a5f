package booking

const (
	ErrInvalidIdentifier     = "invalid identifier"
	ErrPastDate              = "cannot book a past date"
	ErrPastTime              = "cannot book a past time"
	ErrInvalidDoctor         = "invalid doctor"
	ErrDoctorUnavailable     = "doctor unavailable on these dates"
	ErrMalformedAvailability = "doctor availability is malformed"
	ErrMalformedSchedule     = "doctor working hours are malformed"
	ErrNoWorkingHours        = "doctor working hours are not defined"
	ErrClosedWeekday         = "doctor does not work this weekday"
	ErrOutsideWorkingHours   = "outside working hours"
	ErrSlotTaken             = "slot already booked"
	ErrAppointmentNotFound   = "appointment not found"
	ErrNotAppointmentOwner   = "only the appointment owner can perform this action"
	ErrNotAppointmentDoctor  = "only the appointment doctor can perform this action"
	ErrCancelNotAllowed      = "not allowed to cancel this appointment"
	ErrStatusFinal           = "appointment is already finalized"
	ErrNotActive             = "only active appointments can be completed"
	ErrOnlyPatientCanBook    = "only a patient can create an appointment"
)
