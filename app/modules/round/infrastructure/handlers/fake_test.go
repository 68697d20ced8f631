package roundhandlers

import (
	"context"
	"sync"

	roundservice "github.com/Black-And-White-Club/debate-rounds/app/modules/round/application"
	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	"github.com/google/uuid"
)

// FakeRoundService is a programmable roundservice.Service.
type FakeRoundService struct {
	mu    sync.Mutex
	trace []string

	CreateRoundFunc         func(ctx context.Context, caller roundservice.Caller, input roundservice.CreateRoundInput) (*rounddomain.Round, error)
	JoinRoundFunc           func(ctx context.Context, caller roundservice.Caller, code string) (*roundservice.JoinResult, error)
	SetAllocationsFunc      func(ctx context.Context, caller roundservice.Caller, roundID uuid.UUID, entries []roundservice.AllocationInput) ([]rounddomain.Allocation, error)
	GetParticipantsFunc     func(ctx context.Context, roundID uuid.UUID) ([]roundservice.Participant, error)
	StartRoundFunc          func(ctx context.Context, caller roundservice.Caller, roundID uuid.UUID) (*rounddomain.Round, error)
	TerminateRoundFunc      func(ctx context.Context, caller roundservice.Caller, roundID uuid.UUID) (*rounddomain.Round, error)
	GetRoundStatusFunc      func(ctx context.Context, roundID uuid.UUID) (*roundservice.RoundStatus, error)
	SubmitResultFunc        func(ctx context.Context, caller roundservice.Caller, roundID uuid.UUID, input roundservice.SubmitResultInput) (*roundservice.SubmitResultOutput, error)
	GetResultFunc           func(ctx context.Context, roundID uuid.UUID) (*rounddomain.Result, error)
	ListRoundsFunc          func(ctx context.Context, caller roundservice.Caller, input roundservice.ListRoundsInput) ([]rounddomain.Round, error)
	GetRoundDetailFunc      func(ctx context.Context, roundID uuid.UUID) (*roundservice.RoundDetail, error)
	DeleteRoundFunc         func(ctx context.Context, caller roundservice.Caller, roundID uuid.UUID) error
	ActiveRoundsForUserFunc func(ctx context.Context, userID uuid.UUID) ([]roundservice.ActiveRound, error)
}

var _ roundservice.Service = (*FakeRoundService)(nil)

func (f *FakeRoundService) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeRoundService) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.trace...)
}

func (f *FakeRoundService) CreateRound(ctx context.Context, caller roundservice.Caller, input roundservice.CreateRoundInput) (*rounddomain.Round, error) {
	f.record("CreateRound")
	if f.CreateRoundFunc != nil {
		return f.CreateRoundFunc(ctx, caller, input)
	}
	return &rounddomain.Round{}, nil
}

func (f *FakeRoundService) JoinRound(ctx context.Context, caller roundservice.Caller, code string) (*roundservice.JoinResult, error) {
	f.record("JoinRound")
	if f.JoinRoundFunc != nil {
		return f.JoinRoundFunc(ctx, caller, code)
	}
	return &roundservice.JoinResult{}, nil
}

func (f *FakeRoundService) SetAllocations(ctx context.Context, caller roundservice.Caller, roundID uuid.UUID, entries []roundservice.AllocationInput) ([]rounddomain.Allocation, error) {
	f.record("SetAllocations")
	if f.SetAllocationsFunc != nil {
		return f.SetAllocationsFunc(ctx, caller, roundID, entries)
	}
	return nil, nil
}

func (f *FakeRoundService) GetParticipants(ctx context.Context, roundID uuid.UUID) ([]roundservice.Participant, error) {
	f.record("GetParticipants")
	if f.GetParticipantsFunc != nil {
		return f.GetParticipantsFunc(ctx, roundID)
	}
	return nil, nil
}

func (f *FakeRoundService) StartRound(ctx context.Context, caller roundservice.Caller, roundID uuid.UUID) (*rounddomain.Round, error) {
	f.record("StartRound")
	if f.StartRoundFunc != nil {
		return f.StartRoundFunc(ctx, caller, roundID)
	}
	return &rounddomain.Round{}, nil
}

func (f *FakeRoundService) TerminateRound(ctx context.Context, caller roundservice.Caller, roundID uuid.UUID) (*rounddomain.Round, error) {
	f.record("TerminateRound")
	if f.TerminateRoundFunc != nil {
		return f.TerminateRoundFunc(ctx, caller, roundID)
	}
	return &rounddomain.Round{}, nil
}

func (f *FakeRoundService) GetRoundStatus(ctx context.Context, roundID uuid.UUID) (*roundservice.RoundStatus, error) {
	f.record("GetRoundStatus")
	if f.GetRoundStatusFunc != nil {
		return f.GetRoundStatusFunc(ctx, roundID)
	}
	return &roundservice.RoundStatus{}, nil
}

func (f *FakeRoundService) SubmitResult(ctx context.Context, caller roundservice.Caller, roundID uuid.UUID, input roundservice.SubmitResultInput) (*roundservice.SubmitResultOutput, error) {
	f.record("SubmitResult")
	if f.SubmitResultFunc != nil {
		return f.SubmitResultFunc(ctx, caller, roundID, input)
	}
	return &roundservice.SubmitResultOutput{}, nil
}

func (f *FakeRoundService) GetResult(ctx context.Context, roundID uuid.UUID) (*rounddomain.Result, error) {
	f.record("GetResult")
	if f.GetResultFunc != nil {
		return f.GetResultFunc(ctx, roundID)
	}
	return &rounddomain.Result{}, nil
}

func (f *FakeRoundService) ListRounds(ctx context.Context, caller roundservice.Caller, input roundservice.ListRoundsInput) ([]rounddomain.Round, error) {
	f.record("ListRounds")
	if f.ListRoundsFunc != nil {
		return f.ListRoundsFunc(ctx, caller, input)
	}
	return nil, nil
}

func (f *FakeRoundService) GetRoundDetail(ctx context.Context, roundID uuid.UUID) (*roundservice.RoundDetail, error) {
	f.record("GetRoundDetail")
	if f.GetRoundDetailFunc != nil {
		return f.GetRoundDetailFunc(ctx, roundID)
	}
	return &roundservice.RoundDetail{}, nil
}

func (f *FakeRoundService) DeleteRound(ctx context.Context, caller roundservice.Caller, roundID uuid.UUID) error {
	f.record("DeleteRound")
	if f.DeleteRoundFunc != nil {
		return f.DeleteRoundFunc(ctx, caller, roundID)
	}
	return nil
}

func (f *FakeRoundService) ActiveRoundsForUser(ctx context.Context, userID uuid.UUID) ([]roundservice.ActiveRound, error) {
	f.record("ActiveRoundsForUser")
	if f.ActiveRoundsForUserFunc != nil {
		return f.ActiveRoundsForUserFunc(ctx, userID)
	}
	return nil, nil
}
