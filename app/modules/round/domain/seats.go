package rounddomain

import "fmt"

// DuplicateSeatError reports a unique seat assigned more than once.
type DuplicateSeatError struct {
	Role Role
}

func (e *DuplicateSeatError) Error() string {
	return fmt.Sprintf("role '%s' is assigned to more than one participant", e.Role)
}

// CheckUniqueSeats returns a *DuplicateSeatError for the first debater seat or
// chair that appears twice in roles.
func CheckUniqueSeats(roles []Role) error {
	seen := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		if !r.UniqueSeat() {
			continue
		}
		if _, dup := seen[r]; dup {
			return &DuplicateSeatError{Role: r}
		}
		seen[r] = struct{}{}
	}
	return nil
}
