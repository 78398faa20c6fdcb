package assignment

import (
	"time"

	"github.com/trezcool/prodigy/core"
)

const DefaultMaxPoints = 100

type (
	Assignment struct {
		ID          string `json:"id"`
		ClassID     string `json:"class_id"`
		ClassName   string `json:"class_name,omitempty"`
		Title       string `json:"title"`
		Description string `json:"description"`
		DueDate     string `json:"due_date"`
		MaxPoints   int    `json:"max_points"`
		TeacherID   string `json:"teacher_id,omitempty"`
		CreatedAt   string `json:"created_at,omitempty"`
	}

	Submission struct {
		ID           string   `json:"id"`
		AssignmentID string   `json:"assignment_id"`
		StudentID    string   `json:"student_id"`
		StudentName  string   `json:"student_name,omitempty"`
		Content      string   `json:"content"`
		FileIDs      []string `json:"file_ids"`
		Grade        *int     `json:"grade"`
		Remarks      *string  `json:"remarks"`
		SubmittedAt  string   `json:"submitted_at,omitempty"`
	}

	// StudentAnalytics is the progress report of one student.
	StudentAnalytics struct {
		TotalAssignments     int          `json:"total_assignments"`
		CompletedAssignments int          `json:"completed_assignments"`
		AverageGrade         float64      `json:"average_grade"`
		TotalClasses         int          `json:"total_classes"`
		Submissions          []Submission `json:"submissions"`
	}
)

func (s Submission) Graded() bool { return s.Grade != nil }

// Due parses DueDate. Dates without a time are due at midnight UTC.
func (a Assignment) Due() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, a.DueDate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Overdue reports whether the assignment is past due at now.
func (a Assignment) Overdue(now time.Time) bool {
	due, ok := a.Due()
	return ok && now.After(due)
}

// NewAssignment contains the information needed to create an assignment.
type NewAssignment struct {
	ClassID     string `json:"class_id" validate:"required"`
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"required,notblank"`
	DueDate     string `json:"due_date" validate:"required,duedate"`
	MaxPoints   int    `json:"max_points" validate:"min=1,max=1000"`
}

func (na *NewAssignment) Validate() error {
	na.ClassID = core.CleanString(na.ClassID)
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.DueDate = core.CleanString(na.DueDate)
	if na.MaxPoints == 0 {
		na.MaxPoints = DefaultMaxPoints
	}
	return core.Validate.Struct(na)
}

// NewSubmission contains a student's answer to an assignment.
type NewSubmission struct {
	AssignmentID string   `json:"assignment_id" validate:"required"`
	Content      string   `json:"content"`
	FileIDs      []string `json:"file_ids"`
}

func (ns *NewSubmission) Validate() error {
	ns.AssignmentID = core.CleanString(ns.AssignmentID)
	ns.Content = core.CleanString(ns.Content)
	if ns.FileIDs == nil {
		ns.FileIDs = []string{}
	}
	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	if ns.Content == "" && len(ns.FileIDs) == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "content", Error: emptySubmissionText})
	}
	return nil
}

// GradeInput is a teacher's grade for a submission.
type GradeInput struct {
	SubmissionID string `json:"submission_id" validate:"required"`
	Grade        int    `json:"grade" validate:"min=0"`
	Remarks      string `json:"remarks"`

	// MaxPoints of the graded assignment; 0 when unknown. Never sent.
	MaxPoints int `json:"-"`
}

func (gi *GradeInput) Validate() error {
	gi.SubmissionID = core.CleanString(gi.SubmissionID)
	gi.Remarks = core.CleanString(gi.Remarks)
	return core.Validate.Struct(gi)
}
