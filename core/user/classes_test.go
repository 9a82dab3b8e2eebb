package user

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassMap_JSON(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    ClassMap
		wantErr bool
	}{
		{name: "keeps document order", data: `{"Grade 6":["6A"],"Grade 5":["5B","5A"]}`, want: ClassMap{
			{Grade: "Grade 6", Sections: []string{"6A"}},
			{Grade: "Grade 5", Sections: []string{"5B", "5A"}},
		}},
		{name: "empty object", data: `{}`, want: ClassMap{}},
		{name: "null", data: `null`, want: nil},
		{name: "repeated grade", data: `{"Grade 1":["1A"],"Grade 2":["2A"],"Grade 1":["1B"]}`, want: ClassMap{
			{Grade: "Grade 1", Sections: []string{"1B"}},
			{Grade: "Grade 2", Sections: []string{"2A"}},
		}},
		{name: "not an object", data: `["Grade 1"]`, wantErr: true},
		{name: "sections not an array", data: `{"Grade 1":"1A"}`, wantErr: true},
		{name: "section not a string", data: `{"Grade 1":[1]}`, wantErr: true},
		{name: "invalid json", data: `{"Grade 1":`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ClassMap
			err := json.Unmarshal([]byte(tt.data), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassMap_MarshalJSON(t *testing.T) {
	m := ClassMap{
		{Grade: "Grade 6", Sections: []string{"6A"}},
		{Grade: "Grade 5", Sections: []string{"5A", "5B"}},
		{Grade: "Grade 7"},
	}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"Grade 6":["6A"],"Grade 5":["5A","5B"],"Grade 7":[]}`, string(data))

	var back ClassMap
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m.Flatten(), back.Flatten())
}

func TestClassMap_Set(t *testing.T) {
	var m ClassMap
	m.Set("Grade 2", "2A")
	m.Set("Grade 1", "1A")
	m.Set("Grade 2", "2A", "2B")

	assert.Equal(t, []ClassContext{
		{Grade: "Grade 2", ClassName: "2A"},
		{Grade: "Grade 2", ClassName: "2B"},
		{Grade: "Grade 1", ClassName: "1A"},
	}, m.Flatten())
}

func TestAllClasses(t *testing.T) {
	teacher := User{
		ID:          "1",
		Role:        RoleTeacher,
		IsOnboarded: true,
		Profile: &TeacherProfile{
			Grades: []string{"Grade 5", "Grade 6"},
			Classes: ClassMap{
				{Grade: "Grade 5", Sections: []string{"5A", "5B"}},
				{Grade: "Grade 6", Sections: []string{"6A"}},
			},
		},
	}
	emptyFirst := User{
		ID:          "4",
		Role:        RoleTeacher,
		IsOnboarded: true,
		Profile: &TeacherProfile{
			Classes: ClassMap{{Grade: "Grade 1"}, {Grade: "Grade 2", Sections: []string{"2B"}}},
		},
	}
	principal := User{ID: "2", Role: RolePrincipal, IsOnboarded: true, Profile: &PrincipalProfile{}}
	newTeacher := User{ID: "3", Role: RoleTeacher}

	tests := []struct {
		name      string
		usr       *User
		want      []ClassContext
		wantFirst *ClassContext
	}{
		{name: "nobody", want: []ClassContext{}},
		{name: "teacher", usr: &teacher, want: []ClassContext{
			{Grade: "Grade 5", ClassName: "5A"},
			{Grade: "Grade 5", ClassName: "5B"},
			{Grade: "Grade 6", ClassName: "6A"},
		}, wantFirst: &ClassContext{Grade: "Grade 5", ClassName: "5A"}},
		{name: "first grade without sections", usr: &emptyFirst, want: []ClassContext{
			{Grade: "Grade 2", ClassName: "2B"},
		}, wantFirst: &ClassContext{Grade: "Grade 2", ClassName: "2B"}},
		{name: "principal", usr: &principal, want: SchoolRoster},
		{name: "not onboarded", usr: &newTeacher, want: []ClassContext{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllClasses(tt.usr))

			first, ok := FirstClass(tt.usr)
			if tt.wantFirst == nil {
				assert.False(t, ok)
				return
			}
			assert.True(t, ok)
			assert.Equal(t, *tt.wantFirst, first)
			assert.True(t, HasClass(tt.usr, first))
		})
	}
}

func TestSchoolRoster(t *testing.T) {
	assert.Len(t, SchoolRoster, 9)
	assert.Equal(t, ClassContext{Grade: "Grade 1", ClassName: "1A"}, SchoolRoster[0])
	assert.Equal(t, ClassContext{Grade: "Grade 6", ClassName: "6A"}, SchoolRoster[8])
}
