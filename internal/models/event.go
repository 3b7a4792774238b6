package models

type AnswersSubmittedEvent struct {
	ExamID    string `json:"exam_id"`
	StudentID string `json:"student_id"`
	Answered  int    `json:"answered"`
	Timestamp int64  `json:"timestamp"`
}

type ScoreRecordedEvent struct {
	AnswerID  string `json:"answer_id"`
	StudentID string `json:"student_id"`
	ExamID    string `json:"exam_id"`
	Score     int    `json:"score"`
	Timestamp int64  `json:"timestamp"`
}
