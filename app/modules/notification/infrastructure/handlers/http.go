package notificationhandlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	authhandlers "github.com/Black-And-White-Club/debate-rounds/app/modules/auth/infrastructure/handlers"
	notificationservice "github.com/Black-And-White-Club/debate-rounds/app/modules/notification/application"
	notificationqueue "github.com/Black-And-White-Club/debate-rounds/app/modules/notification/infrastructure/queue"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/httpjson"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// QueueInspector lists delivery jobs that have not finished.
type QueueInspector interface {
	PendingJobs(ctx context.Context) ([]notificationqueue.JobInfo, error)
}

// InboxHandlers serves the caller's notifications over HTTP.
type InboxHandlers struct {
	service notificationservice.Service
	queue   QueueInspector
	logger  *slog.Logger
}

// NewInboxHandlers creates the inbox handlers. queue is nil when delivery
// runs inline.
func NewInboxHandlers(service notificationservice.Service, queue QueueInspector, logger *slog.Logger) *InboxHandlers {
	return &InboxHandlers{service: service, queue: queue, logger: logger}
}

// Routes registers the inbox endpoints. Mount under /api/notifications.
func (h *InboxHandlers) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/unread-count", h.UnreadCount)
	r.Post("/read-all", h.MarkAllRead)
	r.Get("/queue", h.PendingDeliveries)
	r.Post("/{notificationID}/read", h.MarkRead)
}

// List supports ?unread=true, limit and offset.
func (h *InboxHandlers) List(w http.ResponseWriter, r *http.Request) {
	recipient, ok := recipientID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	input := notificationservice.ListInput{}
	if raw := q.Get("unread"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpjson.Write(w, http.StatusBadRequest, httpjson.ErrorBody{Error: "unread must be a boolean", Field: "unread"})
			return
		}
		input.UnreadOnly = v
	}
	for _, p := range []struct {
		field string
		dst   *int
	}{{"limit", &input.Limit}, {"offset", &input.Offset}} {
		field, dst := p.field, p.dst
		raw := q.Get(field)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			httpjson.Write(w, http.StatusBadRequest, httpjson.ErrorBody{Error: field + " must be an integer", Field: field})
			return
		}
		*dst = v
	}

	items, err := h.service.List(r.Context(), recipient, input)
	if err != nil {
		h.internal(w, r, "list_notifications", err)
		return
	}
	httpjson.Write(w, http.StatusOK, items)
}

func (h *InboxHandlers) UnreadCount(w http.ResponseWriter, r *http.Request) {
	recipient, ok := recipientID(w, r)
	if !ok {
		return
	}
	n, err := h.service.UnreadCount(r.Context(), recipient)
	if err != nil {
		h.internal(w, r, "unread_count", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]int{"unread": n})
}

func (h *InboxHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	recipient, ok := recipientID(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "notificationID"))
	if err != nil {
		httpjson.Write(w, http.StatusBadRequest, httpjson.ErrorBody{Error: "invalid notification id", Field: "id"})
		return
	}
	if err := h.service.MarkRead(r.Context(), recipient, id); err != nil {
		if errors.Is(err, notificationservice.ErrNotFound) {
			httpjson.Error(w, http.StatusNotFound, "notification not found")
			return
		}
		h.internal(w, r, "mark_read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InboxHandlers) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	recipient, ok := recipientID(w, r)
	if !ok {
		return
	}
	n, err := h.service.MarkAllRead(r.Context(), recipient)
	if err != nil {
		h.internal(w, r, "mark_all_read", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]int{"updated": n})
}

// PendingDeliveries lists queued delivery jobs. Staff only.
func (h *InboxHandlers) PendingDeliveries(w http.ResponseWriter, r *http.Request) {
	claims, ok := authhandlers.ClaimsFrom(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !claims.Staff() {
		httpjson.Error(w, http.StatusForbidden, "staff role required")
		return
	}
	if h.queue == nil {
		httpjson.Error(w, http.StatusNotFound, "delivery queue is not enabled")
		return
	}
	jobs, err := h.queue.PendingJobs(r.Context())
	if err != nil {
		h.internal(w, r, "pending_jobs", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string][]notificationqueue.JobInfo{"jobs": jobs})
}

func (h *InboxHandlers) internal(w http.ResponseWriter, r *http.Request, operation string, err error) {
	h.logger.ErrorContext(r.Context(), "Notification request failed",
		attr.String("operation", operation),
		attr.Error(err),
	)
	httpjson.Error(w, http.StatusInternalServerError, "internal server error")
}

func recipientID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	claims, ok := authhandlers.ClaimsFrom(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return uuid.Nil, false
	}
	return claims.UserID, true
}
