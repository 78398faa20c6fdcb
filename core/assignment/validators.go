package assignment

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/prodigy/core"
)

var (
	dueDateTag  = "duedate"
	dueDateText = "due date must be a date (YYYY-MM-DD) or a date and time"

	gradeTooHighTag  = "maxpoints"
	gradeTooHighText = "grade cannot exceed the assignment's max points"

	emptySubmissionText = "write an answer or attach a file"
)

func init() {
	_ = core.Validate.RegisterValidation(dueDateTag, dueDateValidation)
	core.RegisterCustomTranslation(dueDateTag, dueDateText)
	core.RegisterCustomTranslation(gradeTooHighTag, gradeTooHighText)
	core.Validate.RegisterStructValidation(gradeStructValidation, GradeInput{})
}

// gradeStructValidation bounds the grade by the assignment's max points, when known.
func gradeStructValidation(sl validator.StructLevel) {
	gi := sl.Current().Interface().(GradeInput)
	if gi.MaxPoints > 0 && gi.Grade > gi.MaxPoints {
		sl.ReportError(gi.Grade, "grade", "Grade", gradeTooHighTag, "")
	}
}

func dueDateValidation(fl validator.FieldLevel) bool {
	_, ok := Assignment{DueDate: fl.Field().String()}.Due()
	return ok
}
