package roundhandlers

import (
	"errors"
	"net/http"

	authhandlers "github.com/Black-And-White-Club/debate-rounds/app/modules/auth/infrastructure/handlers"
	roundservice "github.com/Black-And-White-Club/debate-rounds/app/modules/round/application"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/httpjson"
)

// caller resolves the authenticated principal. The auth middleware guarantees
// one on mounted routes; a missing one is answered with 401.
func (h *RoundHandlers) caller(w http.ResponseWriter, r *http.Request) (roundservice.Caller, bool) {
	claims, ok := authhandlers.ClaimsFrom(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return roundservice.Caller{}, false
	}
	return roundservice.Caller{
		ID:       claims.UserID,
		Username: claims.Username,
		IsStaff:  claims.IsStaff,
		IsAdmin:  claims.IsAdmin,
	}, true
}

// writeError maps service errors onto status codes.
func (h *RoundHandlers) writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	var validation *roundservice.ValidationError
	var transition *roundservice.InvalidStateTransitionError

	switch {
	case errors.As(err, &validation):
		httpjson.Write(w, http.StatusBadRequest, httpjson.ErrorBody{Error: validation.Error(), Field: validation.Field})
	case errors.As(err, &transition):
		httpjson.Write(w, http.StatusConflict, httpjson.ErrorBody{Error: transition.Error(), CurrentStatus: string(transition.Current)})
	case errors.Is(err, roundservice.ErrValidation):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, roundservice.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, roundservice.ErrForbidden):
		httpjson.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, roundservice.ErrConflict):
		httpjson.Error(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Round request failed",
			attr.String("operation", operation),
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		httpjson.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
