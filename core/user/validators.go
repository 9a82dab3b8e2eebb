package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sahayak/core"
)

var (
	gradeTag  = "grade"
	gradeText = "{0} contains an unknown grade"

	subjectTag  = "subject"
	subjectText = "{0} contains an unknown subject"

	experienceTag  = "experience"
	experienceText = "unknown experience level"

	gradeClassesTag  = "gradeclasses"
	gradeClassesText = "every selected grade needs at least one class and classes must belong to a selected grade"
)

// InitValidators registers the onboarding validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(gradeTag, catalogValidation(AvailableGrades))
	core.RegisterCustomTranslation(validate, translator, gradeTag, gradeText)

	_ = validate.RegisterValidation(subjectTag, catalogValidation(AvailableSubjects))
	core.RegisterCustomTranslation(validate, translator, subjectTag, subjectText)

	_ = validate.RegisterValidation(experienceTag, catalogValidation(ExperienceLevels))
	core.RegisterCustomTranslation(validate, translator, experienceTag, experienceText)

	validate.RegisterStructValidation(teacherProfileStructValidation, TeacherProfile{})
	core.RegisterCustomTranslation(validate, translator, gradeClassesTag, gradeClassesText)
}

// Validate cleans the onboarding form and checks it: at least one grade and one subject,
// all picked from the catalogs, and a class list consistent with the grades.
func (p *TeacherProfile) Validate(validate *validator.Validate) error {
	p.Clean()
	return validate.Struct(p)
}

// Custom Validators

// catalogValidation checks that a string field is one of the allowed values.
func catalogValidation(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return contains(allowed, fl.Field().String())
	}
}

// teacherProfileStructValidation checks Classes against Grades.
func teacherProfileStructValidation(sl validator.StructLevel) {
	prof, ok := sl.Current().Interface().(TeacherProfile)
	if !ok {
		return
	}
	reportErr := func() {
		sl.ReportError(prof.Classes, "classes", "Classes", gradeClassesTag, "")
	}

	for _, grade := range prof.Grades {
		sections, ok := prof.Classes.Sections(grade)
		if !ok || len(sections) == 0 {
			reportErr()
			return
		}
		for _, section := range sections {
			if section == "" {
				reportErr()
				return
			}
		}
	}
	for _, gs := range prof.Classes {
		if !contains(prof.Grades, gs.Grade) {
			reportErr()
			return
		}
	}
}
