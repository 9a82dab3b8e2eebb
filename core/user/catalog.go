package user

// Options offered by the onboarding form.
var (
	AvailableGrades = []string{
		"Pre-K", "Kindergarten", "Grade 1", "Grade 2", "Grade 3",
		"Grade 4", "Grade 5", "Grade 6", "Grade 7", "Grade 8",
		"Grade 9", "Grade 10", "Grade 11", "Grade 12",
	}

	AvailableSubjects = []string{
		"Mathematics", "Science", "English", "Social Studies", "History",
		"Geography", "Physics", "Chemistry", "Biology", "Literature",
		"Art", "Music", "Physical Education", "Computer Science",
	}

	ExperienceLevels = []string{"1-2 years", "3-5 years", "6-10 years", "11-15 years", "15+ years"}
)

// Catalog groups the onboarding options, as served to views.
type Catalog struct {
	Grades     []string `json:"grades"`
	Subjects   []string `json:"subjects"`
	Experience []string `json:"experience"`
}

func GetCatalog() Catalog {
	return Catalog{
		Grades:     copyStrings(AvailableGrades),
		Subjects:   copyStrings(AvailableSubjects),
		Experience: copyStrings(ExperienceLevels),
	}
}

// NextSectionName names the next class-section of a grade the way the onboarding form does:
// A, B, C... Z, AA, AB... Names already in sections are skipped.
func NextSectionName(sections []string) string {
	for n := len(sections); ; n++ {
		if name := sectionLetters(n); !contains(sections, name) {
			return name
		}
	}
}

// sectionLetters spells n in bijective base 26: 0 is A, 25 is Z, 26 is AA.
func sectionLetters(n int) string {
	var buf []byte
	for n++; n > 0; n = (n - 1) / 26 {
		buf = append([]byte{byte('A' + (n-1)%26)}, buf...)
	}
	return string(buf)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
