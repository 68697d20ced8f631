package rounddb

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	// ErrNotFound is returned when a round, allocation or result is not found.
	ErrNotFound = errors.New("not found")

	// ErrCodeTaken is returned when a new round's code is already in use.
	ErrCodeTaken = errors.New("round code already in use")

	// ErrResultExists is returned when a round already has a result.
	ErrResultExists = errors.New("round already has a result")
)

// Constraint names declared by the round migrations.
const (
	constraintRoundCode     = "uq_rounds_round_code"
	constraintResultRound   = "uq_round_results_round"
	sqlStateUniqueViolation = "23505"
)

// uniqueViolation reports whether err is a unique violation of constraint,
// for either the pgdriver or the pgx driver.
func uniqueViolation(err error, constraint string) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == sqlStateUniqueViolation && pgErr.Field('n') == constraint
	}
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == sqlStateUniqueViolation && pgxErr.ConstraintName == constraint
	}
	return false
}
