package entity

import "time"

type Course struct {
	ID           string    `json:"id" firestore:"id"`
	Name         string    `json:"name" firestore:"name"`
	Code         string    `json:"code" firestore:"code"`
	Description  string    `json:"description,omitempty" firestore:"description,omitempty"`
	TeacherID    string    `json:"teacher_id,omitempty" firestore:"teacherId,omitempty"`
	Department   string    `json:"department,omitempty" firestore:"department,omitempty"`
	Semester     string    `json:"semester,omitempty" firestore:"semester,omitempty"`
	AcademicYear string    `json:"academic_year,omitempty" firestore:"academicYear,omitempty"`
	Credits      int       `json:"credits,omitempty" firestore:"credits,omitempty"`
	MaxStudents  int       `json:"max_students,omitempty" firestore:"maxStudents,omitempty"`
	StudentIDs   []string  `json:"student_ids,omitempty" firestore:"studentIds,omitempty"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"`
}
