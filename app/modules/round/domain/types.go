package rounddomain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Format is the debate format of a round.
type Format string

const (
	FormatBritishParliamentary Format = "ABP"
	FormatAsianParliamentary   Format = "PDA"
)

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f == FormatBritishParliamentary || f == FormatAsianParliamentary
}

// Display is the human readable format name used in notifications.
func (f Format) Display() string {
	switch f {
	case FormatBritishParliamentary:
		return "British Parliamentary"
	case FormatAsianParliamentary:
		return "Asian Parliamentary"
	default:
		return string(f)
	}
}

// RequiredDebaters is the number of debater seats the format fills.
func (f Format) RequiredDebaters() int {
	switch f {
	case FormatBritishParliamentary:
		return 8
	case FormatAsianParliamentary:
		return 6
	default:
		return 0
	}
}

// Status is the lifecycle state of a round.
type Status string

const (
	StatusSetup      Status = "SETUP"
	StatusAllocation Status = "ALLOCATION"
	StatusActive     Status = "ACTIVE"
	StatusCompleted  Status = "COMPLETED"
	StatusTerminated Status = "TERMINATED"
)

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusTerminated
}

// Role is a participant's role within a round. The zero value means the
// participant has joined but not been allocated.
type Role string

const (
	RoleUnassigned Role = ""

	RolePrimeMinister             Role = "Prime Minister"
	RoleDeputyPrimeMinister       Role = "Deputy Prime Minister"
	RoleMemberOfGovernment        Role = "Member of Government"
	RoleGovernmentWhip            Role = "Government Whip"
	RoleLeaderOfOpposition        Role = "Leader of Opposition"
	RoleDeputyLeaderOfOpposition  Role = "Deputy Leader of Opposition"
	RoleMemberOfOpposition        Role = "Member of Opposition"
	RoleOppositionWhip            Role = "Opposition Whip"
	RoleChairAdjudicator          Role = "Chair Adjudicator"
	RolePanelist                  Role = "Panelist"
	RoleTrainee                   Role = "Trainee"
	RoleSpectator                 Role = "Spectator"
)

// DebaterRoles lists the speaking seats in bench order.
var DebaterRoles = []Role{
	RolePrimeMinister,
	RoleDeputyPrimeMinister,
	RoleMemberOfGovernment,
	RoleGovernmentWhip,
	RoleLeaderOfOpposition,
	RoleDeputyLeaderOfOpposition,
	RoleMemberOfOpposition,
	RoleOppositionWhip,
}

// AdjudicatorRoles lists the judging roles.
var AdjudicatorRoles = []Role{RoleChairAdjudicator, RolePanelist, RoleTrainee}

// Valid reports whether r is an assignable role.
func (r Role) Valid() bool {
	return r.IsDebater() || r.IsAdjudicator() || r == RoleSpectator
}

func (r Role) IsDebater() bool {
	for _, d := range DebaterRoles {
		if r == d {
			return true
		}
	}
	return false
}

func (r Role) IsAdjudicator() bool {
	for _, a := range AdjudicatorRoles {
		if r == a {
			return true
		}
	}
	return false
}

// UniqueSeat reports whether at most one participant may hold r in a round
// when seat uniqueness is enforced.
func (r Role) UniqueSeat() bool {
	return r.IsDebater() || r == RoleChairAdjudicator
}

// WinningSide is the bench that won the round.
type WinningSide string

const (
	SideGovernment WinningSide = "GOVERNMENT"
	SideOpposition WinningSide = "OPPOSITION"
)

func (w WinningSide) Valid() bool {
	return w == SideGovernment || w == SideOpposition
}

// ActivityAction is the kind of entry written to the activity log.
type ActivityAction string

const (
	ActionJoined    ActivityAction = "joined"
	ActionAllocated ActivityAction = "allocated"
	ActionCompleted ActivityAction = "completed"
)

// Round is a single debate.
type Round struct {
	ID              uuid.UUID  `json:"id"`
	Format          Format     `json:"format"`
	MotionID        *uuid.UUID `json:"motion_id,omitempty"`
	MaxAdjudicators int        `json:"max_adjudicators"`
	Status          Status     `json:"status"`
	Code            Code       `json:"round_code"`
	IsActive        bool       `json:"is_active"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// Allocation binds one user to one role in one round.
type Allocation struct {
	ID        uuid.UUID `json:"id"`
	RoundID   uuid.UUID `json:"round_id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserRef is a resolved user reference.
type UserRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// SpeakerScore is a score resolved to the speaker it belongs to.
type SpeakerScore struct {
	UserID   uuid.UUID       `json:"user_id"`
	Username string          `json:"username"`
	Role     Role            `json:"role"`
	Score    decimal.Decimal `json:"score"`
	Comments string          `json:"comments"`
}

// Result is the adjudicated outcome of a round.
type Result struct {
	ID          uuid.UUID      `json:"id"`
	RoundID     uuid.UUID      `json:"round_id"`
	WinningSide WinningSide    `json:"winning_side"`
	Summary     string         `json:"summary"`
	SubmittedBy *UserRef       `json:"submitted_by"`
	SubmittedAt time.Time      `json:"submitted_at"`
	Scores      []SpeakerScore `json:"speaker_scores"`
}
