package leaderboard

import (
	"context"
	"net/url"

	"github.com/trezcool/prodigy/core"
)

type Entry struct {
	StudentID            string  `json:"student_id"`
	StudentName          string  `json:"student_name"`
	AverageScore         float64 `json:"average_score"`
	AssignmentsCompleted int     `json:"assignments_completed"`
}

// Board is ranked by average score, best first.
type Board []Entry

// Rank returns the 1-based rank of the student, 0 if absent.
// Students with the same average share a rank.
func (b Board) Rank(studentID string) int {
	rank := 0
	for i, e := range b {
		if i == 0 || e.AverageScore != b[i-1].AverageScore {
			rank = i + 1
		}
		if e.StudentID == studentID {
			return rank
		}
	}
	return 0
}

// Podium returns the first n entries.
func (b Board) Podium(n int) Board {
	if n > len(b) {
		n = len(b)
	}
	return b[:n]
}

type Service struct {
	api core.Backend
}

func NewService(api core.Backend) *Service {
	return &Service{api: api}
}

// Get returns the leaderboard of a class, or across all classes when classID is empty.
func (svc *Service) Get(ctx context.Context, classID string) (Board, error) {
	var query url.Values
	if classID = core.CleanString(classID); classID != "" {
		query = url.Values{"class_id": {classID}}
	}
	board := make(Board, 0)
	err := svc.api.Do(ctx, core.Get("/leaderboard", query), &board)
	return board, err
}
