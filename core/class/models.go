package class

import (
	"github.com/trezcool/prodigy/core"
)

type (
	Class struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		Description string   `json:"description,omitempty"`
		Subject     string   `json:"subject,omitempty"`
		Code        string   `json:"class_code"`
		TeacherID   string   `json:"teacher_id"`
		TeacherName string   `json:"teacher_name,omitempty"`
		Students    []string `json:"students"`
		CreatedAt   string   `json:"created_at,omitempty"`
	}

	Student struct {
		ID       string `json:"id"`
		Username string `json:"username,omitempty"`
		Name     string `json:"full_name,omitempty"`
		Email    string `json:"email,omitempty"`
	}

	Announcement struct {
		ID        string `json:"id"`
		ClassID   string `json:"class_id"`
		ClassName string `json:"class_name,omitempty"`
		Title     string `json:"title"`
		Content   string `json:"content"`
		CreatedAt string `json:"created_at,omitempty"`
	}

	// Analytics is the teacher's view of a class.
	Analytics struct {
		TotalStudents    int                    `json:"total_students"`
		TotalAssignments int                    `json:"total_assignments"`
		TotalSubmissions int                    `json:"total_submissions"`
		StudentStats     map[string]StudentStat `json:"student_stats"` // by student id
	}

	StudentStat struct {
		Total  int `json:"total"`
		Graded int `json:"graded"`
		Points int `json:"points"`
	}

	JoinResult struct {
		Message   string `json:"message"`
		ClassName string `json:"class_name"`
	}
)

func (c Class) StudentCount() int { return len(c.Students) }

// Enrolled reports whether the student belongs to the class.
func (c Class) Enrolled(studentID string) bool {
	for _, id := range c.Students {
		if id == studentID {
			return true
		}
	}
	return false
}

// Average returns the mean grade of the student's graded submissions.
func (s StudentStat) Average() float64 {
	if s.Graded == 0 {
		return 0
	}
	return float64(s.Points) / float64(s.Graded)
}

// NewClass contains the information needed to create a class.
type NewClass struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description"`
	Subject     string `json:"subject" validate:"omitempty,max=60"`
}

func (nc *NewClass) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.Subject = core.CleanString(nc.Subject)
	return core.Validate.Struct(nc)
}

type joinRequest struct {
	Code string `json:"class_code" validate:"required,alphanum,len=8"`
}

// NewAnnouncement contains the information needed to post an announcement.
type NewAnnouncement struct {
	ClassID string `json:"class_id" validate:"required"`
	Title   string `json:"title" validate:"required,notblank,max=200"`
	Content string `json:"content" validate:"required,notblank"`
}

func (na *NewAnnouncement) Validate() error {
	na.ClassID = core.CleanString(na.ClassID)
	na.Title = core.CleanString(na.Title)
	na.Content = core.CleanString(na.Content)
	return core.Validate.Struct(na)
}
