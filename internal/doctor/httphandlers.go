package doctor

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"clinic-booking/internal/apierrors"
	"clinic-booking/internal/auth"
	"clinic-booking/internal/database"
	"clinic-booking/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type httpHandler struct {
	authorizer auth.Authorizer
	service    Service
	logger     *log.Logger
}

// Setup setups the routes handled by doctor context.
func Setup(router *chi.Mux, logger *log.Logger, authorizer auth.Authorizer, dbConn database.Connection) {
	handler := &httpHandler{logger: logger, authorizer: authorizer, service: NewService(logger, dbConn)}

	// protected routes, only for doctors
	router.Group(func(group chi.Router) {
		group.Use(auth.JwtValidator(authorizer))
		group.Use(auth.AllowedRoles(authorizer, auth.DoctorRole))
		group.Put("/api/v1/doctors/schedule", handler.UpdateSchedule)
		group.Post("/api/v1/doctors/unavailable", handler.AddUnavailable)
		group.Post("/api/v1/doctors/unavailable/{rangeKey}/cancel", handler.CancelUnavailable)
		group.Post("/api/v1/doctors/health-history", handler.AddHealthHistory)
	})

	// protected routes, shared by every role
	router.Group(func(group chi.Router) {
		group.Use(auth.JwtValidator(authorizer))
		group.Use(auth.AllowedRoles(authorizer, auth.PatientRole, auth.DoctorRole, auth.AdminRole))
		group.Get("/api/v1/doctors/{doctorUUID}", handler.GetDoctor)
	})
}

// writeError logs the given error and translates it into the proper HTTP response.
func (h httpHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
	switch v := err.(type) {
	case *apierrors.APIError:
		w.WriteHeader(v.HTTPStatusCode())
		_ = json.NewEncoder(w).Encode(err)
		return
	case *apierrors.ValidationError:
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(err)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
}

func (h httpHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uuidPar := chi.URLParam(r, "doctorUUID")
	doctorUUID, err := uuid.Parse(uuidPar)
	if err != nil {
		h.writeError(w, r, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidIdentifier), apierrors.WithHTTPStatusCode(http.StatusBadRequest)))
		return
	}
	profile, err := h.service.GetDoctor(ctx, doctorUUID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(profile)
}

func (h httpHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.authorizer.GetAuthenticatedUser(ctx)
	if err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	scheduleRequest := new(ScheduleUpdateRequest)
	if err = json.NewDecoder(r.Body).Decode(scheduleRequest); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	profile, err := h.service.UpdateSchedule(ctx, user, *scheduleRequest)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(profile)
}

func (h httpHandler) AddUnavailable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.authorizer.GetAuthenticatedUser(ctx)
	if err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	unavailableRequest := new(UnavailableRequest)
	if err = json.NewDecoder(r.Body).Decode(unavailableRequest); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	entry, err := h.service.AddUnavailable(ctx, user, *unavailableRequest)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(entry)
}

func (h httpHandler) CancelUnavailable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rangeKey := chi.URLParam(r, "rangeKey")
	if rangeKey == "" {
		h.writeError(w, r, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidIdentifier), apierrors.WithHTTPStatusCode(http.StatusNotFound)))
		return
	}
	user, err := h.authorizer.GetAuthenticatedUser(ctx)
	if err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	entry, err := h.service.CancelUnavailable(ctx, user, rangeKey)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(entry)
}

func (h httpHandler) AddHealthHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.authorizer.GetAuthenticatedUser(ctx)
	if err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	historyRequest := new(HealthHistoryRequest)
	if err = json.NewDecoder(r.Body).Decode(historyRequest); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	history, err := h.service.AddHealthHistory(ctx, user, *historyRequest)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(history)
}
