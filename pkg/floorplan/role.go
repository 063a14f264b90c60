package floorplan

import "fmt"

// Role classifies a pin for the floorplan.
type Role int

const (
	// RoleOther pins are ignored by every constraint and the objective.
	RoleOther Role = iota
	// RoleAsym pins are placed independently.
	RoleAsym
	// RoleSymPrimary is the primary pin of a symmetry pair.
	RoleSymPrimary
	// RoleSymSecondary is the secondary pin of a symmetry pair. Its position
	// is the mirror image of its primary.
	RoleSymSecondary
)

// String returns the short role name used in logs and results.
func (r Role) String() string {
	switch r {
	case RoleOther:
		return "other"
	case RoleAsym:
		return "asym"
	case RoleSymPrimary:
		return "sym-primary"
	case RoleSymSecondary:
		return "sym-secondary"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Participates reports whether pins of this role are placed.
func (r Role) Participates() bool {
	switch r {
	case RoleAsym, RoleSymPrimary, RoleSymSecondary:
		return true
	case RoleOther:
		return false
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	switch string(b) {
	case "other":
		*r = RoleOther
	case "asym":
		*r = RoleAsym
	case "sym-primary":
		*r = RoleSymPrimary
	case "sym-secondary":
		*r = RoleSymSecondary
	default:
		return fmt.Errorf("unknown pin role %q", b)
	}
	return nil
}

// RoleCounts holds the number of pins per role.
type RoleCounts struct {
	Asym         int `json:"asym"`
	SymPrimary   int `json:"sym_primary"`
	SymSecondary int `json:"sym_secondary"`
	Other        int `json:"other"`
}

// Participating returns the number of placed pins.
func (c RoleCounts) Participating() int { return c.Asym + c.SymPrimary + c.SymSecondary }
