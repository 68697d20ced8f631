package roundservice

import (
	"context"
	"sync"

	rounddomain "github.com/Black-And-White-Club/debate-rounds/app/modules/round/domain"
	rounddb "github.com/Black-And-White-Club/debate-rounds/app/modules/round/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Round Repo
// ------------------------

type FakeRoundRepo struct {
	mu    sync.Mutex
	trace []string

	CreateRoundFunc              func(ctx context.Context, db bun.IDB, round *rounddb.Round) error
	CodeExistsFunc               func(ctx context.Context, db bun.IDB, code string) (bool, error)
	GetRoundFunc                 func(ctx context.Context, db bun.IDB, id uuid.UUID, lock rounddb.LockMode) (*rounddb.Round, error)
	GetRoundByCodeFunc           func(ctx context.Context, db bun.IDB, code string, lock rounddb.LockMode) (*rounddb.Round, error)
	ListRoundsFunc               func(ctx context.Context, db bun.IDB, filter rounddb.ListFilter) ([]*rounddb.Round, error)
	UpdateRoundStateFunc         func(ctx context.Context, db bun.IDB, round *rounddb.Round) error
	DeleteRoundFunc              func(ctx context.Context, db bun.IDB, id uuid.UUID) error
	InsertAllocationIfAbsentFunc func(ctx context.Context, db bun.IDB, alloc *rounddb.Allocation) (bool, error)
	GetAllocationFunc            func(ctx context.Context, db bun.IDB, roundID, userID uuid.UUID) (*rounddb.Allocation, error)
	ListAllocationsFunc          func(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]*rounddb.Allocation, error)
	ReplaceAllocationsFunc       func(ctx context.Context, db bun.IDB, roundID uuid.UUID, allocs []*rounddb.Allocation) error
	ListParticipantsFunc         func(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]*rounddb.Participant, error)
	ListRoundsForUserFunc        func(ctx context.Context, db bun.IDB, userID uuid.UUID, status string) ([]*rounddb.UserRound, error)
	InsertResultFunc             func(ctx context.Context, db bun.IDB, result *rounddb.Result) error
	InsertSpeakerScoresFunc      func(ctx context.Context, db bun.IDB, scores []*rounddb.SpeakerScore) error
	GetResultFunc                func(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*rounddb.Result, error)
	ListScoreDetailsFunc         func(ctx context.Context, db bun.IDB, resultID uuid.UUID) ([]*rounddb.ScoreDetail, error)
}

func NewFakeRoundRepo() *FakeRoundRepo {
	return &FakeRoundRepo{trace: []string{}}
}

func (f *FakeRoundRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeRoundRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// --- Repository Interface Implementation ---

func (f *FakeRoundRepo) CreateRound(ctx context.Context, db bun.IDB, round *rounddb.Round) error {
	f.record("CreateRound")
	if f.CreateRoundFunc != nil {
		return f.CreateRoundFunc(ctx, db, round)
	}
	return nil
}

func (f *FakeRoundRepo) CodeExists(ctx context.Context, db bun.IDB, code string) (bool, error) {
	f.record("CodeExists")
	if f.CodeExistsFunc != nil {
		return f.CodeExistsFunc(ctx, db, code)
	}
	return false, nil
}

func (f *FakeRoundRepo) GetRound(ctx context.Context, db bun.IDB, id uuid.UUID, lock rounddb.LockMode) (*rounddb.Round, error) {
	f.record("GetRound")
	if f.GetRoundFunc != nil {
		return f.GetRoundFunc(ctx, db, id, lock)
	}
	return nil, rounddb.ErrNotFound
}

func (f *FakeRoundRepo) GetRoundByCode(ctx context.Context, db bun.IDB, code string, lock rounddb.LockMode) (*rounddb.Round, error) {
	f.record("GetRoundByCode")
	if f.GetRoundByCodeFunc != nil {
		return f.GetRoundByCodeFunc(ctx, db, code, lock)
	}
	return nil, rounddb.ErrNotFound
}

func (f *FakeRoundRepo) ListRounds(ctx context.Context, db bun.IDB, filter rounddb.ListFilter) ([]*rounddb.Round, error) {
	f.record("ListRounds")
	if f.ListRoundsFunc != nil {
		return f.ListRoundsFunc(ctx, db, filter)
	}
	return nil, nil
}

func (f *FakeRoundRepo) UpdateRoundState(ctx context.Context, db bun.IDB, round *rounddb.Round) error {
	f.record("UpdateRoundState")
	if f.UpdateRoundStateFunc != nil {
		return f.UpdateRoundStateFunc(ctx, db, round)
	}
	return nil
}

func (f *FakeRoundRepo) DeleteRound(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.record("DeleteRound")
	if f.DeleteRoundFunc != nil {
		return f.DeleteRoundFunc(ctx, db, id)
	}
	return nil
}

func (f *FakeRoundRepo) InsertAllocationIfAbsent(ctx context.Context, db bun.IDB, alloc *rounddb.Allocation) (bool, error) {
	f.record("InsertAllocationIfAbsent")
	if f.InsertAllocationIfAbsentFunc != nil {
		return f.InsertAllocationIfAbsentFunc(ctx, db, alloc)
	}
	return true, nil
}

func (f *FakeRoundRepo) GetAllocation(ctx context.Context, db bun.IDB, roundID, userID uuid.UUID) (*rounddb.Allocation, error) {
	f.record("GetAllocation")
	if f.GetAllocationFunc != nil {
		return f.GetAllocationFunc(ctx, db, roundID, userID)
	}
	return nil, rounddb.ErrNotFound
}

func (f *FakeRoundRepo) ListAllocations(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]*rounddb.Allocation, error) {
	f.record("ListAllocations")
	if f.ListAllocationsFunc != nil {
		return f.ListAllocationsFunc(ctx, db, roundID)
	}
	return nil, nil
}

func (f *FakeRoundRepo) ReplaceAllocations(ctx context.Context, db bun.IDB, roundID uuid.UUID, allocs []*rounddb.Allocation) error {
	f.record("ReplaceAllocations")
	if f.ReplaceAllocationsFunc != nil {
		return f.ReplaceAllocationsFunc(ctx, db, roundID, allocs)
	}
	return nil
}

func (f *FakeRoundRepo) ListParticipants(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]*rounddb.Participant, error) {
	f.record("ListParticipants")
	if f.ListParticipantsFunc != nil {
		return f.ListParticipantsFunc(ctx, db, roundID)
	}
	return nil, nil
}

func (f *FakeRoundRepo) ListRoundsForUser(ctx context.Context, db bun.IDB, userID uuid.UUID, status string) ([]*rounddb.UserRound, error) {
	f.record("ListRoundsForUser")
	if f.ListRoundsForUserFunc != nil {
		return f.ListRoundsForUserFunc(ctx, db, userID, status)
	}
	return nil, nil
}

func (f *FakeRoundRepo) InsertResult(ctx context.Context, db bun.IDB, result *rounddb.Result) error {
	f.record("InsertResult")
	if f.InsertResultFunc != nil {
		return f.InsertResultFunc(ctx, db, result)
	}
	return nil
}

func (f *FakeRoundRepo) InsertSpeakerScores(ctx context.Context, db bun.IDB, scores []*rounddb.SpeakerScore) error {
	f.record("InsertSpeakerScores")
	if f.InsertSpeakerScoresFunc != nil {
		return f.InsertSpeakerScoresFunc(ctx, db, scores)
	}
	return nil
}

func (f *FakeRoundRepo) GetResult(ctx context.Context, db bun.IDB, roundID uuid.UUID) (*rounddb.Result, error) {
	f.record("GetResult")
	if f.GetResultFunc != nil {
		return f.GetResultFunc(ctx, db, roundID)
	}
	return nil, rounddb.ErrNotFound
}

func (f *FakeRoundRepo) ListScoreDetails(ctx context.Context, db bun.IDB, resultID uuid.UUID) ([]*rounddb.ScoreDetail, error) {
	f.record("ListScoreDetails")
	if f.ListScoreDetailsFunc != nil {
		return f.ListScoreDetailsFunc(ctx, db, resultID)
	}
	return nil, nil
}

var _ rounddb.Repository = (*FakeRoundRepo)(nil)

// ------------------------
// Fake Emitter
// ------------------------

type FakeEmitter struct {
	mu     sync.Mutex
	events []rounddomain.RoundEvent
}

func (f *FakeEmitter) Emit(_ context.Context, event rounddomain.RoundEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *FakeEmitter) Events() []rounddomain.RoundEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]rounddomain.RoundEvent, len(f.events))
	copy(out, f.events)
	return out
}

var _ Emitter = (*FakeEmitter)(nil)
