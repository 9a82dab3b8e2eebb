package user

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// SchoolRoster is every class of the school. Principals see all of it.
var SchoolRoster = []ClassContext{
	{Grade: "Grade 1", ClassName: "1A"},
	{Grade: "Grade 1", ClassName: "1B"},
	{Grade: "Grade 2", ClassName: "2A"},
	{Grade: "Grade 2", ClassName: "2B"},
	{Grade: "Grade 3", ClassName: "3A"},
	{Grade: "Grade 4", ClassName: "4A"},
	{Grade: "Grade 5", ClassName: "5A"},
	{Grade: "Grade 5", ClassName: "5B"},
	{Grade: "Grade 6", ClassName: "6A"},
}

// GradeSections lists the class-sections of one grade, in declaration order.
type GradeSections struct {
	Grade    string
	Sections []string
}

// ClassMap maps grade -> class-sections while keeping declaration order.
// It reads and writes as a plain JSON object: {"Grade 5": ["5A", "5B"], "Grade 6": ["6A"]}.
type ClassMap []GradeSections

// Sections returns the sections declared for grade.
func (m ClassMap) Sections(grade string) ([]string, bool) {
	for _, gs := range m {
		if gs.Grade == grade {
			return gs.Sections, true
		}
	}
	return nil, false
}

// Set replaces the sections of grade in place, or appends the grade when it is new.
func (m *ClassMap) Set(grade string, sections ...string) {
	for i := range *m {
		if (*m)[i].Grade == grade {
			(*m)[i].Sections = sections
			return
		}
	}
	*m = append(*m, GradeSections{Grade: grade, Sections: sections})
}

func (m ClassMap) Clone() ClassMap {
	if m == nil {
		return nil
	}
	cp := make(ClassMap, len(m))
	for i, gs := range m {
		cp[i] = GradeSections{Grade: gs.Grade, Sections: copyStrings(gs.Sections)}
	}
	return cp
}

// Flatten lists every (grade, section) pair: grades in declaration order, then sections in declaration order.
func (m ClassMap) Flatten() []ClassContext {
	classes := make([]ClassContext, 0, len(m))
	for _, gs := range m {
		for _, section := range gs.Sections {
			classes = append(classes, ClassContext{Grade: gs.Grade, ClassName: section})
		}
	}
	return classes
}

func (m ClassMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, gs := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(gs.Grade)
		if err != nil {
			return nil, err
		}
		sections := gs.Sections
		if sections == nil {
			sections = []string{}
		}
		val, err := json.Marshal(sections)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the key order of the document. A repeated grade keeps its first
// position and its last value, like a JS object literal would.
func (m *ClassMap) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("classes: invalid json")
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*m = nil
		return nil
	}
	if !res.IsObject() {
		return errors.New("classes: expected an object")
	}

	var err error
	classes := make(ClassMap, 0)
	res.ForEach(func(key, value gjson.Result) bool {
		if !value.IsArray() {
			err = errors.Errorf("classes[%q]: expected an array", key.String())
			return false
		}
		items := value.Array()
		sections := make([]string, 0, len(items))
		for _, item := range items {
			if item.Type != gjson.String {
				err = errors.Errorf("classes[%q]: expected strings", key.String())
				return false
			}
			sections = append(sections, item.String())
		}
		classes.Set(key.String(), sections...)
		return true
	})
	if err != nil {
		return err
	}
	*m = classes
	return nil
}

// AllClasses derives the classes visible to usr.
// Principals see the whole SchoolRoster, teachers the classes of their own profile.
func AllClasses(usr *User) []ClassContext {
	if usr == nil {
		return []ClassContext{}
	}
	switch {
	case usr.IsPrincipal():
		roster := make([]ClassContext, len(SchoolRoster))
		copy(roster, SchoolRoster)
		return roster
	case usr.IsTeacher():
		if prof, ok := usr.TeacherProfile(); ok {
			return prof.Classes.Flatten()
		}
	}
	return []ClassContext{}
}

// FirstClass is the class auto-selected for an onboarded teacher: the first section of the first grade.
func FirstClass(usr *User) (ClassContext, bool) {
	if usr == nil || !usr.IsTeacher() || !usr.IsOnboarded {
		return ClassContext{}, false
	}
	classes := AllClasses(usr)
	if len(classes) == 0 {
		return ClassContext{}, false
	}
	return classes[0], true
}

// HasClass reports whether class is one of AllClasses(usr).
func HasClass(usr *User, class ClassContext) bool {
	for _, c := range AllClasses(usr) {
		if c == class {
			return true
		}
	}
	return false
}
