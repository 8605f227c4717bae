package model

import "time"

// Course is taught by one teacher to one class on the schedule described by ScheduleText.
type Course struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	TeacherCode  string    `json:"teacher_code"`
	ClassCode    string    `json:"class_code"`
	ScheduleText string    `json:"schedule_text"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is one concrete meeting of a course.
type Session struct {
	Week     int       `json:"week"`
	Date     string    `json:"date"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Location string    `json:"location"`
}
