package directory

import (
	"context"

	"github.com/trezcool/sahayak/core"
	"github.com/trezcool/sahayak/core/user"
)

// Reference keys
const (
	TeacherKey    = "teacher@school.com"
	PrincipalKey  = "principal@school.com"
	NewTeacherKey = "newteacher@school.com"
)

type entry struct {
	key string
	usr user.User
}

// Static is a fixed identity directory. Its records never change: SaveProfile returns the
// onboarded user without writing it back, so a later lookup yields the original record.
type Static struct {
	entries []entry
}

var _ user.Directory = (*Static)(nil) // interface compliance check

// NewStatic returns the reference directory.
func NewStatic() *Static {
	return NewStaticWith(ReferenceUsers()...)
}

// NewStaticWith builds a directory keyed by each user's email, in the given order.
func NewStaticWith(users ...user.User) *Static {
	d := &Static{entries: make([]entry, 0, len(users))}
	for _, usr := range users {
		d.entries = append(d.entries, entry{key: core.CleanString(usr.Email, true /* lower */), usr: usr.Clone()})
	}
	return d
}

func (d *Static) Authenticate(ctx context.Context, key string) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	key = core.CleanString(key, true /* lower */)
	for _, e := range d.entries {
		if e.key == key {
			return e.usr.Clone(), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (d *Static) SaveProfile(ctx context.Context, usr user.User, prof user.TeacherProfile) (user.User, error) {
	if err := ctx.Err(); err != nil {
		return user.User{}, err
	}
	return user.Onboard(usr, prof), nil
}

func (d *Static) Keys() []string {
	keys := make([]string, 0, len(d.entries))
	for _, e := range d.entries {
		keys = append(keys, e.key)
	}
	return keys
}

// ReferenceUsers are the three demo accounts: an onboarded teacher, a principal and a
// teacher who still has to go through onboarding.
func ReferenceUsers() []user.User {
	return []user.User{
		{
			ID:          "1",
			Name:        "Sarah Johnson",
			Email:       TeacherKey,
			Role:        user.RoleTeacher,
			Avatar:      "https://images.unsplash.com/photo-1494790108755-2616b612b647?w=150&h=150&fit=crop&crop=face",
			IsOnboarded: true,
			Profile: &user.TeacherProfile{
				Grades:   []string{"Grade 5", "Grade 6"},
				Subjects: []string{"Mathematics", "Science"},
				Classes: user.ClassMap{
					{Grade: "Grade 5", Sections: []string{"5A", "5B"}},
					{Grade: "Grade 6", Sections: []string{"6A"}},
				},
				Experience:     "8 years",
				Specialization: "STEM Education",
			},
		},
		{
			ID:          "2",
			Name:        "Dr. Michael Brown",
			Email:       PrincipalKey,
			Role:        user.RolePrincipal,
			Avatar:      "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=150&h=150&fit=crop&crop=face",
			IsOnboarded: true,
			Profile: &user.PrincipalProfile{
				SchoolName:    "Green Valley Elementary",
				TotalStudents: 450,
				TotalTeachers: 25,
				Experience:    "15 years",
			},
		},
		{
			ID:          "3",
			Name:        "Emily Davis",
			Email:       NewTeacherKey,
			Role:        user.RoleTeacher,
			Avatar:      "https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=150&h=150&fit=crop&crop=face",
			IsOnboarded: false,
		},
	}
}
