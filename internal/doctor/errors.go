package doctor

const (
	ErrInvalidIdentifier     = "the given identifier is invalid"
	ErrDoctorNotFound        = "doctor not found"
	ErrNoDoctorProfile       = "no doctor record associated to the authenticated user"
	ErrPatientNotFound       = "patient not found"
	ErrMalformedAvailability = "the doctor unavailable ranges are malformed"
	ErrRangeNotFound         = "unavailable range not found"
	ErrRangeCancelled        = "unavailable range was already cancelled"
	ErrRangePast             = "unavailable range already ended"
)
