package models

import "time"

// Exam описывает экзамен из каталога.
type Exam struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Field string  `json:"field"`
	Cost  float64 `json:"cost"` // в USD
}

// UserExam — купленный пользователем экзамен.
// Создаётся незабронированным (Date == nil); дата выставляется ровно один
// раз при бронировании и после этого не меняется. Повторные покупки
// одного экзамена создают отдельные записи.
type UserExam struct {
	ID     int        `json:"id"`
	UserID string     `json:"userId"`
	ExamID int        `json:"examId"`
	Date   *time.Time `json:"date"`
	Used   bool       `json:"used"`
}

// Booked сообщает, забронирован ли экзамен.
func (ue *UserExam) Booked() bool {
	return ue.Date != nil
}

// ExamContent — закрытое содержимое экзамена, доступное только
// пользователям с действующим бронированием.
type ExamContent struct {
	ExamID  int    `json:"examId"`
	Content string `json:"content"`
}
