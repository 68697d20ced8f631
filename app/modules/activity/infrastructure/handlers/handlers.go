package activityhandlers

import (
	"log/slog"
	"net/http"
	"strconv"

	activityservice "github.com/Black-And-White-Club/debate-rounds/app/modules/activity/application"
	authhandlers "github.com/Black-And-White-Club/debate-rounds/app/modules/auth/infrastructure/handlers"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/httpjson"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ActivityHandlers serves the attendance log to staff.
type ActivityHandlers struct {
	service activityservice.Service
	logger  *slog.Logger
}

func NewActivityHandlers(service activityservice.Service, logger *slog.Logger) *ActivityHandlers {
	return &ActivityHandlers{service: service, logger: logger}
}

// Routes registers the endpoints. Mount under /api/activity.
func (h *ActivityHandlers) Routes(r chi.Router) {
	r.Get("/", h.List)
}

// List accepts round_id, user_id, limit and offset query parameters.
func (h *ActivityHandlers) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := authhandlers.ClaimsFrom(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !claims.Staff() {
		httpjson.Error(w, http.StatusForbidden, "staff only")
		return
	}

	q := r.URL.Query()
	var input activityservice.ListInput
	var field string
	var err error
	switch {
	case !parseUUID(q.Get("round_id"), &input.RoundID):
		field = "round_id"
	case !parseUUID(q.Get("user_id"), &input.UserID):
		field = "user_id"
	default:
		if input.Limit, err = optionalInt(q.Get("limit")); err != nil {
			field = "limit"
		} else if input.Offset, err = optionalInt(q.Get("offset")); err != nil {
			field = "offset"
		}
	}
	if field != "" {
		httpjson.Write(w, http.StatusBadRequest, httpjson.ErrorBody{Error: "invalid " + field, Field: field})
		return
	}

	entries, err := h.service.List(r.Context(), input)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list activity", attr.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}
	httpjson.Write(w, http.StatusOK, entries)
}

func parseUUID(raw string, dst *uuid.UUID) bool {
	if raw == "" {
		return true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return false
	}
	*dst = id
	return true
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
