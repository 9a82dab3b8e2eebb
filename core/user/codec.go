package user

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// UnmarshalJSON picks the Profile variant from the user's role.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Email       string          `json:"email"`
		Role        Role            `json:"role"`
		Avatar      string          `json:"avatar"`
		IsOnboarded bool            `json:"isOnboarded"`
		Profile     json.RawMessage `json:"profile"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	usr := User{
		ID:          raw.ID,
		Name:        raw.Name,
		Email:       raw.Email,
		Role:        raw.Role,
		Avatar:      raw.Avatar,
		IsOnboarded: raw.IsOnboarded,
	}
	if prof := bytes.TrimSpace(raw.Profile); len(prof) > 0 && !bytes.Equal(prof, []byte("null")) {
		switch raw.Role {
		case RoleTeacher:
			tp := new(TeacherProfile)
			if err := json.Unmarshal(prof, tp); err != nil {
				return errors.Wrap(err, "decoding teacher profile")
			}
			usr.Profile = tp
		case RolePrincipal:
			pp := new(PrincipalProfile)
			if err := json.Unmarshal(prof, pp); err != nil {
				return errors.Wrap(err, "decoding principal profile")
			}
			usr.Profile = pp
		default:
			return errors.Wrapf(errUnknownRole, "%q", raw.Role)
		}
	}
	*u = usr
	return nil
}

// DecodeUser reads a user snapshot and checks the model invariants.
func DecodeUser(data []byte) (User, error) {
	var usr User
	if err := json.Unmarshal(data, &usr); err != nil {
		return User{}, errors.Wrap(err, "decoding user")
	}
	if err := usr.Check(); err != nil {
		return User{}, errors.Wrap(err, "checking user")
	}
	return usr, nil
}
