package domain

import (
	"database/sql/driver"
	"fmt"
)

// Role is the fixed account type assigned at registration.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleEmployer
	RoleJobSeeker
)

func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "employer":
		return RoleEmployer, nil
	case "job_seeker":
		return RoleJobSeeker, nil
	default:
		return RoleUnknown, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleEmployer:
		return "employer"
	case RoleJobSeeker:
		return "job_seeker"
	default:
		return "unknown"
	}
}

func (r Role) MarshalText() ([]byte, error) {
	if r == RoleUnknown {
		return nil, fmt.Errorf("cannot marshal unknown role")
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Scan implements sql.Scanner. Roles are stored by name.
func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
}

func (r Role) Value() (driver.Value, error) {
	if r == RoleUnknown {
		return nil, fmt.Errorf("cannot store unknown role")
	}
	return r.String(), nil
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID int64
	Role   Role
}
