package service

import (
	"context"
	"sort"
	"sync"

	"github.com/lib/pq"

	"github.com/zsbati/exam-service/internal/models"
)

// memStore backs the in-memory fake repositories used by the service
// tests. All fakes share one store so cross-repository effects (the
// scoring transaction touching answers and the ledger) stay visible.
type memStore struct {
	mu        sync.Mutex
	accounts  map[string]*models.Account
	teachers  map[string]*models.Teacher
	students  map[string]*models.Student
	exams     map[string]*models.Exam
	questions map[string]*models.Question
	answers   map[string]*models.StudentAnswer
	results   map[string]*models.ExamResult
	ledger    map[string]*models.LedgerEntry
	seq       int64
}

func newMemStore() *memStore {
	return &memStore{
		accounts:  make(map[string]*models.Account),
		teachers:  make(map[string]*models.Teacher),
		students:  make(map[string]*models.Student),
		exams:     make(map[string]*models.Exam),
		questions: make(map[string]*models.Question),
		answers:   make(map[string]*models.StudentAnswer),
		results:   make(map[string]*models.ExamResult),
		ledger:    make(map[string]*models.LedgerEntry),
	}
}

func pairKey(studentID, examID string) string {
	return studentID + "|" + examID
}

// examIDForQuestion resolves an answer back to its exam. Caller holds
// the lock.
func (s *memStore) examIDForQuestion(questionID string) string {
	if q, ok := s.questions[questionID]; ok {
		return q.ExamID
	}
	return ""
}

type fakeAccountRepo struct{ s *memStore }

func (r *fakeAccountRepo) Create(_ context.Context, account *models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.accounts {
		if existing.Username == account.Username || existing.Email == account.Email {
			return &pq.Error{Code: "23505"}
		}
	}
	cp := *account
	r.s.accounts[account.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// Delete mimics the schema's cascades: role rows go with the account,
// the deleted teacher's exams are orphaned, the deleted student's
// answers, results and ledger rows disappear.
func (r *fakeAccountRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.accounts, id)
	for tid, t := range r.s.teachers {
		if t.AccountID != id {
			continue
		}
		delete(r.s.teachers, tid)
		for _, e := range r.s.exams {
			if e.TeacherID == tid {
				e.TeacherID = ""
			}
		}
	}
	for sid, st := range r.s.students {
		if st.AccountID != id {
			continue
		}
		delete(r.s.students, sid)
		for aid, a := range r.s.answers {
			if a.StudentID == sid {
				delete(r.s.answers, aid)
			}
		}
		for key, res := range r.s.results {
			if res.StudentID == sid {
				delete(r.s.results, key)
			}
		}
		for key, entry := range r.s.ledger {
			if entry.StudentID == sid {
				delete(r.s.ledger, key)
			}
		}
	}
	return nil
}

func (r *fakeAccountRepo) ResolveRole(_ context.Context, accountID string) (models.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	account, ok := r.s.accounts[accountID]
	if !ok {
		return models.Role{}, models.ErrNotFound
	}
	if account.IsSuperuser {
		return models.Role{Kind: models.RoleSuperuser, AccountID: accountID}, nil
	}
	for tid, t := range r.s.teachers {
		if t.AccountID == accountID {
			return models.Role{Kind: models.RoleTeacher, AccountID: accountID, TeacherID: tid}, nil
		}
	}
	for sid, st := range r.s.students {
		if st.AccountID == accountID {
			return models.Role{Kind: models.RoleStudent, AccountID: accountID, StudentID: sid}, nil
		}
	}
	return models.Role{Kind: models.RoleUnassigned, AccountID: accountID}, nil
}

type fakeTeacherRepo struct{ s *memStore }

func (r *fakeTeacherRepo) Create(_ context.Context, teacher *models.Teacher) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *teacher
	r.s.teachers[teacher.ID] = &cp
	return nil
}

func (r *fakeTeacherRepo) GetByID(_ context.Context, id string) (*models.Teacher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.teachers[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeTeacherRepo) GetAll(_ context.Context, limit, offset int) ([]models.TeacherWithStats, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.TeacherWithStats
	for _, t := range r.s.teachers {
		out = append(out, models.TeacherWithStats{Teacher: *t})
	}
	return out, len(out), nil
}

func (r *fakeTeacherRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.teachers, id)
	return nil
}

func (r *fakeTeacherRepo) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.teachers[id]
	return ok, nil
}

type fakeStudentRepo struct{ s *memStore }

func (r *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *student
	r.s.students[student.ID] = &cp
	return nil
}

func (r *fakeStudentRepo) GetByID(_ context.Context, id string) (*models.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if st, ok := r.s.students[id]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeStudentRepo) GetAll(_ context.Context, limit, offset int) ([]models.StudentWithStats, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.StudentWithStats
	for _, st := range r.s.students {
		out = append(out, models.StudentWithStats{Student: *st})
	}
	return out, len(out), nil
}

func (r *fakeStudentRepo) GetByTeacher(_ context.Context, teacherID string, limit, offset int) ([]models.StudentWithStats, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.StudentWithStats
	for _, st := range r.s.students {
		if st.HasTeacher(teacherID) {
			out = append(out, models.StudentWithStats{Student: *st})
		}
	}
	return out, len(out), nil
}

func (r *fakeStudentRepo) SetTeachers(_ context.Context, studentID string, teacherIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if st, ok := r.s.students[studentID]; ok {
		st.TeacherIDs = append([]string(nil), teacherIDs...)
	}
	return nil
}

func (r *fakeStudentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.students, id)
	return nil
}

func (r *fakeStudentRepo) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.students[id]
	return ok, nil
}

type fakeExamRepo struct{ s *memStore }

func (r *fakeExamRepo) Create(_ context.Context, exam *models.Exam) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *exam
	r.s.exams[exam.ID] = &cp
	return nil
}

func (r *fakeExamRepo) GetByID(_ context.Context, id string) (*models.Exam, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e, ok := r.s.exams[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeExamRepo) GetAll(_ context.Context, limit, offset int) ([]models.ExamWithStats, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.ExamWithStats
	for _, e := range r.s.exams {
		out = append(out, models.ExamWithStats{Exam: *e})
	}
	return out, len(out), nil
}

func (r *fakeExamRepo) GetByTeacher(_ context.Context, teacherID string, limit, offset int) ([]models.ExamWithStats, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.ExamWithStats
	for _, e := range r.s.exams {
		if e.TeacherID == teacherID {
			out = append(out, models.ExamWithStats{Exam: *e})
		}
	}
	return out, len(out), nil
}

func (r *fakeExamRepo) GetAccessible(_ context.Context, studentID string, grade int, limit, offset int) ([]models.ExamWithStats, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	student := r.s.students[studentID]
	var out []models.ExamWithStats
	for _, e := range r.s.exams {
		if e.Grade != grade {
			continue
		}
		if student == nil || e.TeacherID == "" || !student.HasTeacher(e.TeacherID) {
			continue
		}
		out = append(out, models.ExamWithStats{Exam: *e})
	}
	return out, len(out), nil
}

func (r *fakeExamRepo) Update(_ context.Context, exam *models.Exam) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *exam
	r.s.exams[exam.ID] = &cp
	return nil
}

func (r *fakeExamRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.exams, id)
	return nil
}

func (r *fakeExamRepo) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.exams[id]
	return ok, nil
}

type fakeQuestionRepo struct{ s *memStore }

func (r *fakeQuestionRepo) Create(_ context.Context, question *models.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.seq++
	question.Seq = r.s.seq
	cp := *question
	r.s.questions[question.ID] = &cp
	return nil
}

func (r *fakeQuestionRepo) GetByID(_ context.Context, id string) (*models.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if q, ok := r.s.questions[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeQuestionRepo) GetByExam(_ context.Context, examID string) ([]models.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Question
	for _, q := range r.s.questions {
		if q.ExamID == examID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (r *fakeQuestionRepo) CountByExam(_ context.Context, examID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, q := range r.s.questions {
		if q.ExamID == examID {
			count++
		}
	}
	return count, nil
}

func (r *fakeQuestionRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.questions, id)
	return nil
}

type fakeAnswerRepo struct{ s *memStore }

func (r *fakeAnswerRepo) CreateBatch(_ context.Context, answers []*models.StudentAnswer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range answers {
		for _, existing := range r.s.answers {
			if existing.StudentID == a.StudentID && existing.QuestionID == a.QuestionID {
				return models.ErrAlreadySubmitted
			}
		}
	}
	for _, a := range answers {
		cp := *a
		r.s.answers[a.ID] = &cp
	}
	return nil
}

func (r *fakeAnswerRepo) ExistsForExam(_ context.Context, studentID, examID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.answers {
		if a.StudentID == studentID && r.s.examIDForQuestion(a.QuestionID) == examID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAnswerRepo) GetByID(_ context.Context, id string) (*models.StudentAnswer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a, ok := r.s.answers[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeAnswerRepo) details(a *models.StudentAnswer) models.StudentAnswerWithDetails {
	d := models.StudentAnswerWithDetails{StudentAnswer: *a}
	if q, ok := r.s.questions[a.QuestionID]; ok {
		d.QuestionText = q.Text
		d.ExamID = q.ExamID
		if e, ok := r.s.exams[q.ExamID]; ok {
			d.ExamTitle = e.Title
		}
	}
	if st, ok := r.s.students[a.StudentID]; ok {
		d.StudentName = st.Name
	}
	return d
}

func (r *fakeAnswerRepo) GetByExam(_ context.Context, examID string, limit, offset int) ([]models.StudentAnswerWithDetails, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.StudentAnswerWithDetails
	for _, a := range r.s.answers {
		if r.s.examIDForQuestion(a.QuestionID) == examID {
			out = append(out, r.details(a))
		}
	}
	return out, len(out), nil
}

func (r *fakeAnswerRepo) GetByStudent(_ context.Context, studentID string, limit, offset int) ([]models.StudentAnswerWithDetails, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.StudentAnswerWithDetails
	for _, a := range r.s.answers {
		if a.StudentID == studentID {
			out = append(out, r.details(a))
		}
	}
	return out, len(out), nil
}

func (r *fakeAnswerRepo) GetByTeacher(_ context.Context, teacherID string, limit, offset int) ([]models.StudentAnswerWithDetails, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.StudentAnswerWithDetails
	for _, a := range r.s.answers {
		examID := r.s.examIDForQuestion(a.QuestionID)
		if e, ok := r.s.exams[examID]; ok && e.TeacherID == teacherID {
			out = append(out, r.details(a))
		}
	}
	return out, len(out), nil
}

func (r *fakeAnswerRepo) GetAll(_ context.Context, limit, offset int) ([]models.StudentAnswerWithDetails, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.StudentAnswerWithDetails
	for _, a := range r.s.answers {
		out = append(out, r.details(a))
	}
	return out, len(out), nil
}

// RecordScore mirrors the storage transaction: set the score, recompute
// the student's exam total, upsert the ledger row with that total.
func (r *fakeAnswerRepo) RecordScore(_ context.Context, answerID string, score int, entry *models.LedgerEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	answer, ok := r.s.answers[answerID]
	if !ok {
		return models.ErrNotFound
	}
	sc := score
	answer.Score = &sc

	total := 0
	for _, a := range r.s.answers {
		if a.StudentID == entry.StudentID && a.Score != nil && r.s.examIDForQuestion(a.QuestionID) == entry.ExamID {
			total += *a.Score
		}
	}

	key := pairKey(entry.StudentID, entry.ExamID)
	if existing, ok := r.s.ledger[key]; ok {
		existing.Score = total
		existing.Date = entry.Date
		existing.Subject = entry.Subject
		existing.TeacherName = entry.TeacherName
		return nil
	}
	cp := *entry
	cp.Score = total
	r.s.ledger[key] = &cp
	return nil
}

func (r *fakeAnswerRepo) SumScoresByExam(_ context.Context, examID string) ([]models.StudentScore, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byStudent := make(map[string]*models.StudentScore)
	for _, a := range r.s.answers {
		if r.s.examIDForQuestion(a.QuestionID) != examID {
			continue
		}
		score, ok := byStudent[a.StudentID]
		if !ok {
			score = &models.StudentScore{StudentID: a.StudentID}
			byStudent[a.StudentID] = score
		}
		score.Answered++
		if a.Score != nil {
			score.Graded++
			score.Total += *a.Score
		}
	}
	var out []models.StudentScore
	for _, score := range byStudent {
		out = append(out, *score)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

type fakeResultRepo struct{ s *memStore }

func (r *fakeResultRepo) Upsert(_ context.Context, studentID, examID string, totalScore int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pairKey(studentID, examID)
	if existing, ok := r.s.results[key]; ok {
		existing.TotalScore = totalScore
		return nil
	}
	r.s.results[key] = &models.ExamResult{
		ID:         key,
		StudentID:  studentID,
		ExamID:     examID,
		TotalScore: totalScore,
	}
	return nil
}

func (r *fakeResultRepo) GetByStudent(_ context.Context, studentID string) ([]models.ExamResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.ExamResult
	for _, res := range r.s.results {
		if res.StudentID == studentID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *fakeResultRepo) GetByExam(_ context.Context, examID string) ([]models.ExamResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.ExamResult
	for _, res := range r.s.results {
		if res.ExamID == examID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *fakeResultRepo) GetByTeacher(_ context.Context, teacherID string) ([]models.ExamResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.ExamResult
	for _, res := range r.s.results {
		if e, ok := r.s.exams[res.ExamID]; ok && e.TeacherID == teacherID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (r *fakeResultRepo) GetAll(_ context.Context) ([]models.ExamResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.ExamResult
	for _, res := range r.s.results {
		out = append(out, *res)
	}
	return out, nil
}

type fakeLedgerRepo struct{ s *memStore }

func (r *fakeLedgerRepo) GetByStudent(_ context.Context, studentID string) ([]models.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.LedgerEntry
	for _, entry := range r.s.ledger {
		if entry.StudentID == studentID {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) GetByStudentAndExam(_ context.Context, studentID, examID string) (*models.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if entry, ok := r.s.ledger[pairKey(studentID, examID)]; ok {
		cp := *entry
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeLedgerRepo) GetByTeacher(_ context.Context, teacherID string) ([]models.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.LedgerEntry
	for _, entry := range r.s.ledger {
		if st, ok := r.s.students[entry.StudentID]; ok && st.HasTeacher(teacherID) {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) GetAll(_ context.Context) ([]models.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.LedgerEntry
	for _, entry := range r.s.ledger {
		out = append(out, *entry)
	}
	return out, nil
}

type fakeEventPublisher struct {
	mu        sync.Mutex
	submitted []*models.AnswersSubmittedEvent
	recorded  []*models.ScoreRecordedEvent
}

func (p *fakeEventPublisher) PublishAnswersSubmitted(_ context.Context, event *models.AnswersSubmittedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitted = append(p.submitted, event)
	return nil
}

func (p *fakeEventPublisher) PublishScoreRecorded(_ context.Context, event *models.ScoreRecordedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recorded = append(p.recorded, event)
	return nil
}

func (p *fakeEventPublisher) Close() error { return nil }
