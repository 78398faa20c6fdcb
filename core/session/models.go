package session

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/prodigy/core"
)

// Role is the sole authorization predicate of the client.
type Role string

// Roles
const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var (
	AllRoles = []Role{RoleTeacher, RoleStudent}

	ErrInvalidRole = errors.New("invalid role")
)

func ParseRole(s string) (Role, error) {
	switch r := Role(core.CleanString(s, true /* lower */)); r {
	case RoleTeacher, RoleStudent:
		return r, nil
	}
	return "", errors.Wrapf(ErrInvalidRole, "%q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string { return string(r) }

// Profile is the user identity as returned by the backend.
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username,omitempty"`
	Name      string `json:"full_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      Role   `json:"role"`
	Avatar    string `json:"avatar,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (p Profile) IsTeacher() bool { return p.Role == RoleTeacher }
func (p Profile) IsStudent() bool { return p.Role == RoleStudent }

// DisplayName returns the best human readable name available.
func (p Profile) DisplayName() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.Username != "":
		return p.Username
	}
	return p.Email
}

// Merge returns a copy of p with all non-nil fields of upd applied.
func (p Profile) Merge(upd ProfileUpdate) Profile {
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Username != nil {
		p.Username = *upd.Username
	}
	if upd.Email != nil {
		p.Email = *upd.Email
	}
	if upd.Avatar != nil {
		p.Avatar = *upd.Avatar
	}
	return p
}

// ProfileUpdate holds the partial fields accepted by `PUT /auth/profile` and Manager.UpdateUser.
type ProfileUpdate struct {
	Name     *string `json:"full_name,omitempty" validate:"omitempty,notblank"`
	Username *string `json:"username,omitempty" validate:"omitempty,min=3"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Avatar   *string `json:"avatar,omitempty" validate:"omitempty,url"`
}

func (pu ProfileUpdate) IsEmpty() bool {
	return pu.Name == nil && pu.Username == nil && pu.Email == nil && pu.Avatar == nil
}

func (pu *ProfileUpdate) Validate() error {
	if pu.Name != nil {
		pu.Name = core.StrPtr(*pu.Name)
	}
	if pu.Avatar != nil {
		pu.Avatar = core.StrPtr(*pu.Avatar)
	}
	if pu.Username != nil {
		uname := core.CleanString(*pu.Username, true /* lower */)
		pu.Username = &uname
	}
	if pu.Email != nil {
		email := core.CleanString(*pu.Email, true /* lower */)
		pu.Email = &email
	}
	return core.Validate.Struct(pu)
}

// Credentials contains the information needed to log in.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate() error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return core.Validate.Struct(c)
}

// NewAccount contains the information needed to sign up.
type NewAccount struct {
	Username        string `json:"username" validate:"required,min=3,alphanum_"`
	Email           string `json:"email" validate:"required,email"`
	Name            string `json:"full_name" validate:"required,notblank"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"omitempty,eqfield=Password"`
	Role            Role   `json:"role" validate:"required,role"`
}

func (na *NewAccount) Validate() error {
	na.Name = core.CleanString(na.Name)
	na.Username = core.CleanString(na.Username, true /* lower */)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Role = Role(core.CleanString(string(na.Role), true /* lower */))
	return core.Validate.Struct(na)
}

// authResponse is the payload of `POST /auth/login` and `POST /auth/signup`.
type authResponse struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// State is a snapshot of the authentication state.
type State struct {
	User    *Profile `json:"user"`
	Loading bool     `json:"loading"`
}

func (s State) Authenticated() bool { return !s.Loading && s.User != nil }

// EventKind tells subscribers why the authentication state changed.
type EventKind int

const (
	EventResolved  EventKind = iota + 1 // Init finished with a valid session
	EventSignedIn                       // login or signup
	EventUpdated                        // UpdateUser
	EventSignedOut                      // Logout
	EventExpired                        // session rejected by the backend: navigate to login
)

func (k EventKind) String() string {
	switch k {
	case EventResolved:
		return "resolved"
	case EventSignedIn:
		return "signed-in"
	case EventUpdated:
		return "updated"
	case EventSignedOut:
		return "signed-out"
	case EventExpired:
		return "expired"
	}
	return "unknown"
}

type Event struct {
	Kind EventKind
	User *Profile // nil once signed out / expired
}

// roleHint is used in error messages listing the accepted roles.
func roleHint() string {
	names := make([]string, 0, len(AllRoles))
	for _, r := range AllRoles {
		names = append(names, string(r))
	}
	return strings.Join(names, "|")
}
