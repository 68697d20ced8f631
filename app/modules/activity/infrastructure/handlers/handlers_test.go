package activityhandlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	activityservice "github.com/Black-And-White-Club/debate-rounds/app/modules/activity/application"
	authdomain "github.com/Black-And-White-Club/debate-rounds/app/modules/auth/domain"
	authhandlers "github.com/Black-And-White-Club/debate-rounds/app/modules/auth/infrastructure/handlers"
	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type FakeActivityService struct {
	trace    []string
	ListFunc func(ctx context.Context, input activityservice.ListInput) ([]activityservice.Entry, error)
}

func (f *FakeActivityService) RecordRoundEvent(context.Context, rounddomain.RoundEvent) error {
	f.trace = append(f.trace, "RecordRoundEvent")
	return nil
}

func (f *FakeActivityService) List(ctx context.Context, input activityservice.ListInput) ([]activityservice.Entry, error) {
	f.trace = append(f.trace, "List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, input)
	}
	return []activityservice.Entry{}, nil
}

func TestActivityList(t *testing.T) {
	roundID := uuid.New()
	staff := &authdomain.Claims{UserID: uuid.New(), IsStaff: true}
	admin := &authdomain.Claims{UserID: uuid.New(), IsAdmin: true}
	speaker := &authdomain.Claims{UserID: uuid.New()}

	tests := []struct {
		name       string
		claims     *authdomain.Claims
		query      string
		listErr    error
		wantStatus int
		wantInput  *activityservice.ListInput
	}{
		{name: "unauthenticated", wantStatus: http.StatusUnauthorized},
		{name: "not staff", claims: speaker, wantStatus: http.StatusForbidden},
		{name: "staff unfiltered", claims: staff, wantStatus: http.StatusOK, wantInput: &activityservice.ListInput{}},
		{
			name:       "admin filtered by round",
			claims:     admin,
			query:      "?round_id=" + roundID.String() + "&limit=10",
			wantStatus: http.StatusOK,
			wantInput:  &activityservice.ListInput{RoundID: roundID, Limit: 10},
		},
		{name: "bad round id", claims: staff, query: "?round_id=abc", wantStatus: http.StatusBadRequest},
		{name: "bad offset", claims: staff, query: "?offset=-x", wantStatus: http.StatusBadRequest},
		{name: "store failure", claims: staff, listErr: errors.New("db gone"), wantStatus: http.StatusInternalServerError, wantInput: &activityservice.ListInput{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *activityservice.ListInput
			svc := &FakeActivityService{ListFunc: func(_ context.Context, input activityservice.ListInput) ([]activityservice.Entry, error) {
				got = &input
				return []activityservice.Entry{}, tt.listErr
			}}

			r := chi.NewRouter()
			claims := tt.claims
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					if claims != nil {
						req = req.WithContext(authhandlers.WithClaims(req.Context(), claims))
					}
					next.ServeHTTP(w, req)
				})
			})
			r.Route("/api/activity", NewActivityHandlers(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Routes)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activity"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantInput, got)
		})
	}
}
