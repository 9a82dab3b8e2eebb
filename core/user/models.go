package user

import (
	"github.com/pkg/errors"

	"github.com/trezcool/sahayak/core"
)

// Role tags a User and decides which Profile variant it carries.
type Role string

// Roles
const (
	RoleTeacher   Role = "teacher"
	RolePrincipal Role = "principal"
)

var (
	AllRoles = []Role{RoleTeacher, RolePrincipal}

	errUnknownRole = errors.New("unknown role")
)

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Profile is filled in once, at onboarding completion.
// Implemented by *TeacherProfile and *PrincipalProfile only.
type Profile interface {
	Role() Role
	clone() Profile
}

// TeacherProfile is also the onboarding form payload.
type TeacherProfile struct {
	Grades         []string `json:"grades" validate:"min=1,dive,required,grade"`
	Subjects       []string `json:"subjects" validate:"min=1,dive,required,subject"`
	Classes        ClassMap `json:"classes"`
	Experience     string   `json:"experience" validate:"omitempty,experience"`
	Specialization string   `json:"specialization" validate:"omitempty,max=120"`
	Bio            string   `json:"bio,omitempty" validate:"omitempty,max=1000"`
}

func (*TeacherProfile) Role() Role { return RoleTeacher }

func (p *TeacherProfile) clone() Profile {
	cp := *p
	cp.Grades = copyStrings(p.Grades)
	cp.Subjects = copyStrings(p.Subjects)
	cp.Classes = p.Classes.Clone()
	return &cp
}

// Clean trims every text field of the form.
func (p *TeacherProfile) Clean() {
	for i := range p.Grades {
		p.Grades[i] = core.CleanString(p.Grades[i])
	}
	for i := range p.Subjects {
		p.Subjects[i] = core.CleanString(p.Subjects[i])
	}
	for i := range p.Classes {
		p.Classes[i].Grade = core.CleanString(p.Classes[i].Grade)
		for j := range p.Classes[i].Sections {
			p.Classes[i].Sections[j] = core.CleanString(p.Classes[i].Sections[j])
		}
	}
	p.Experience = core.CleanString(p.Experience)
	p.Specialization = core.CleanString(p.Specialization)
	p.Bio = core.CleanString(p.Bio)
}

type PrincipalProfile struct {
	SchoolName    string `json:"schoolName"`
	TotalStudents int    `json:"totalStudents"`
	TotalTeachers int    `json:"totalTeachers"`
	Experience    string `json:"experience"`
}

func (*PrincipalProfile) Role() Role { return RolePrincipal }

func (p *PrincipalProfile) clone() Profile {
	cp := *p
	return &cp
}

type User struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Role        Role    `json:"role"`
	Avatar      string  `json:"avatar"`
	IsOnboarded bool    `json:"isOnboarded"`
	Profile     Profile `json:"profile"`
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

func (u *User) IsPrincipal() bool {
	return u.Role == RolePrincipal
}

// TeacherProfile returns the teacher variant of the profile, if that is what the user carries.
func (u *User) TeacherProfile() (*TeacherProfile, bool) {
	p, ok := u.Profile.(*TeacherProfile)
	return p, ok && p != nil
}

// PrincipalProfile returns the principal variant of the profile, if that is what the user carries.
func (u *User) PrincipalProfile() (*PrincipalProfile, bool) {
	p, ok := u.Profile.(*PrincipalProfile)
	return p, ok && p != nil
}

// Clone deep copies the user, profile included.
func (u User) Clone() User {
	if u.Profile != nil {
		u.Profile = u.Profile.clone()
	}
	return u
}

// Check enforces the model invariants: a known role, no profile before onboarding,
// and a profile variant that matches the role.
func (u *User) Check() error {
	if !u.Role.Valid() {
		return errors.Wrapf(errUnknownRole, "%q", u.Role)
	}
	if u.Profile == nil {
		return nil
	}
	if !u.IsOnboarded {
		return errors.New("profile set on a user that is not onboarded")
	}
	if u.Profile.Role() != u.Role {
		return errors.Errorf("%s profile on a %s", u.Profile.Role(), u.Role)
	}
	return nil
}

// ClassContext is the (grade, class-section) pair a user is currently looking at.
// Section names are free text: whatever the onboarding form accepted is a valid class.
type ClassContext struct {
	Grade     string `json:"grade" validate:"required"`
	ClassName string `json:"className" validate:"required"`
}

func (c ClassContext) String() string {
	return c.Grade + " - " + c.ClassName
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	cp := make([]string, len(s))
	copy(cp, s)
	return cp
}
