package entity

import "time"

type Assignment struct {
	ID             string    `json:"id" firestore:"id"`
	Title          string    `json:"title" firestore:"title"`
	Description    string    `json:"description,omitempty" firestore:"description,omitempty"`
	CourseID       string    `json:"course_id" firestore:"courseId"`
	TeacherID      string    `json:"teacher_id,omitempty" firestore:"teacherId,omitempty"`
	DueDate        time.Time `json:"due_date" firestore:"dueDate"`
	MaxScore       int       `json:"max_score,omitempty" firestore:"maxScore,omitempty"`
	AssignmentType string    `json:"assignment_type,omitempty" firestore:"assignmentType,omitempty"`
	Instructions   string    `json:"instructions,omitempty" firestore:"instructions,omitempty"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
}
