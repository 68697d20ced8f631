package roundhandlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	roundservice "github.com/Black-And-White-Club/debate-rounds/app/modules/round/application"
	roundexport "github.com/Black-And-White-Club/debate-rounds/app/modules/round/infrastructure/export"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/attr"
	"github.com/Black-And-White-Club/debate-rounds/app/shared/httpjson"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RoundHandlers handles HTTP requests for rounds.
type RoundHandlers struct {
	service roundservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewRoundHandlers creates a new RoundHandlers instance.
func NewRoundHandlers(service roundservice.Service, logger *slog.Logger, tracer trace.Tracer) *RoundHandlers {
	return &RoundHandlers{service: service, logger: logger, tracer: tracer}
}

// Routes registers the round endpoints. Mount under /api/rounds behind the
// auth middleware.
func (h *RoundHandlers) Routes(r chi.Router) {
	r.Post("/", h.CreateRound)
	r.Get("/", h.ListRounds)
	r.Get("/active", h.ActiveRounds)
	r.Post("/join", h.JoinRound)

	r.Route("/{roundID}", func(r chi.Router) {
		r.Get("/", h.GetRound)
		r.Delete("/", h.DeleteRound)
		r.Put("/allocations", h.SetAllocations)
		r.Post("/start", h.StartRound)
		r.Post("/terminate", h.TerminateRound)
		r.Post("/result", h.SubmitResult)
		r.Get("/result", h.GetResult)
		r.Get("/result/export", h.ExportResult)
		r.Get("/participants", h.GetParticipants)
		r.Get("/status", h.GetRoundStatus)
	})
}

type joinRequest struct {
	RoundCode string `json:"round_code"`
}

type allocationsRequest struct {
	Allocations []roundservice.AllocationInput `json:"allocations"`
}

// CreateRound creates a round owned by the caller.
func (h *RoundHandlers) CreateRound(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var input roundservice.CreateRoundInput
	if !h.decode(w, r, &input) {
		return
	}

	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.CreateRound")
	defer span.End()

	round, err := h.service.CreateRound(ctx, caller, input)
	if err != nil {
		h.writeError(w, r, "create_round", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, round)
}

// ListRounds lists rounds for staff, optionally filtered by ?status=.
func (h *RoundHandlers) ListRounds(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	input := roundservice.ListRoundsInput{Status: q.Get("status")}
	var err error
	if input.Limit, err = queryInt(q.Get("limit")); err != nil {
		h.writeError(w, r, "list_rounds", &roundservice.ValidationError{Field: "limit", Reason: "must be an integer"})
		return
	}
	if input.Offset, err = queryInt(q.Get("offset")); err != nil {
		h.writeError(w, r, "list_rounds", &roundservice.ValidationError{Field: "offset", Reason: "must be an integer"})
		return
	}

	rounds, err := h.service.ListRounds(r.Context(), caller, input)
	if err != nil {
		h.writeError(w, r, "list_rounds", err)
		return
	}
	httpjson.Write(w, http.StatusOK, rounds)
}

// ActiveRounds lists running rounds the caller takes part in.
func (h *RoundHandlers) ActiveRounds(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	rounds, err := h.service.ActiveRoundsForUser(r.Context(), caller.ID)
	if err != nil {
		h.writeError(w, r, "active_rounds", err)
		return
	}
	httpjson.Write(w, http.StatusOK, rounds)
}

// JoinRound joins the round named by round_code. A repeat join answers 200
// with the existing allocation.
func (h *RoundHandlers) JoinRound(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req joinRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.JoinRound")
	defer span.End()

	res, err := h.service.JoinRound(ctx, caller, req.RoundCode)
	if err != nil {
		h.writeError(w, r, "join_round", err)
		return
	}
	status := http.StatusCreated
	if res.AlreadyJoined {
		status = http.StatusOK
	}
	httpjson.Write(w, status, res)
}

// GetRound returns the round with its allocations.
func (h *RoundHandlers) GetRound(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.caller(w, r); !ok {
		return
	}
	roundID, ok := h.roundID(w, r)
	if !ok {
		return
	}
	detail, err := h.service.GetRoundDetail(r.Context(), roundID)
	if err != nil {
		h.writeError(w, r, "get_round", err)
		return
	}
	httpjson.Write(w, http.StatusOK, detail)
}

// DeleteRound removes a round and everything hanging off it.
func (h *RoundHandlers) DeleteRound(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	roundID, ok := h.roundID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteRound(r.Context(), caller, roundID); err != nil {
		h.writeError(w, r, "delete_round", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetAllocations replaces the round's allocation set.
func (h *RoundHandlers) SetAllocations(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	roundID, ok := h.roundID(w, r)
	if !ok {
		return
	}
	var req allocationsRequest
	if !h.decode(w, r, &req) {
		return
	}

	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.SetAllocations",
		trace.WithAttributes(attribute.Int("allocations", len(req.Allocations))))
	defer span.End()

	allocs, err := h.service.SetAllocations(ctx, caller, roundID, req.Allocations)
	if err != nil {
		h.writeError(w, r, "set_allocations", err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"allocations": allocs})
}

// StartRound moves an allocated round to ACTIVE.
func (h *RoundHandlers) StartRound(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	roundID, ok := h.roundID(w, r)
	if !ok {
		return
	}
	round, err := h.service.StartRound(r.Context(), caller, roundID)
	if err != nil {
		h.writeError(w, r, "start_round", err)
		return
	}
	httpjson.Write(w, http.StatusOK, round)
}

// TerminateRound ends an active round without a result.
func (h *RoundHandlers) TerminateRound(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	roundID, ok := h.roundID(w, r)
	if !ok {
		return
	}
	round, err := h.service.TerminateRound(r.Context(), caller, roundID)
	if err != nil {
		h.writeError(w, r, "terminate_round", err)
		return
	}
	httpjson.Write(w, http.StatusOK, round)
}

// SubmitResult records the chair's result and completes the round.
func (h *RoundHandlers) SubmitResult(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	roundID, ok := h.roundID(w, r)
	if !ok {
		return
	}
	var input roundservice.SubmitResultInput
	if !h.decode(w, r, &input) {
		return
	}

	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.SubmitResult")
	defer span.End()

	out, err := h.service.SubmitResult(ctx, caller, roundID, input)
	if err != nil {
		h.writeError(w, r, "submit_result", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, out)
}

// GetResult returns the stored result.
func (h *RoundHandlers) GetResult(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.caller(w, r); !ok {
		return
	}
	roundID, ok := h.roundID(w, r)
	if !ok {
		return
	}
	result, err := h.service.GetResult(r.Context(), roundID)
	if err != nil {
		h.writeError(w, r, "get_result", err)
		return
	}
	httpjson.Write(w, http.StatusOK, result)
}

// ExportResult streams the result as an .xlsx workbook.
func (h *RoundHandlers) ExportResult(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.caller(w, r); !ok {
		return
	}
	roundID, ok := h.roundID(w, r)
	if !ok {
		return
	}

	ctx, span := h.tracer.Start(r.Context(), "RoundHandlers.ExportResult")
	defer span.End()

	detail, err := h.service.GetRoundDetail(ctx, roundID)
	if err != nil {
		h.writeError(w, r, "export_result", err)
		return
	}
	result, err := h.service.GetResult(ctx, roundID)
	if err != nil {
		h.writeError(w, r, "export_result", err)
		return
	}
	data, err := roundexport.ResultSheet(detail.Round, *result)
	if err != nil {
		h.writeError(w, r, "export_result", fmt.Errorf("failed to render result sheet: %w", err))
		return
	}

	w.Header().Set("Content-Type", roundexport.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", roundexport.Filename(detail.Round)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(ctx, "Failed to write result sheet", attr.Error(err))
	}
}

// GetParticipants lists the users holding an allocation.
func (h *RoundHandlers) GetParticipants(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.caller(w, r); !ok {
		return
	}
	roundID, ok := h.roundID(w, r)
	if !ok {
		return
	}
	participants, err := h.service.GetParticipants(r.Context(), roundID)
	if err != nil {
		h.writeError(w, r, "get_participants", err)
		return
	}
	httpjson.Write(w, http.StatusOK, participants)
}

// GetRoundStatus returns the lifecycle snapshot.
func (h *RoundHandlers) GetRoundStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.caller(w, r); !ok {
		return
	}
	roundID, ok := h.roundID(w, r)
	if !ok {
		return
	}
	status, err := h.service.GetRoundStatus(r.Context(), roundID)
	if err != nil {
		h.writeError(w, r, "get_round_status", err)
		return
	}
	httpjson.Write(w, http.StatusOK, status)
}

func (h *RoundHandlers) roundID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "roundID"))
	if err != nil {
		httpjson.Write(w, http.StatusBadRequest, httpjson.ErrorBody{Error: "invalid round id", Field: "round_id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *RoundHandlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httpjson.Decode(r, v); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func queryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
