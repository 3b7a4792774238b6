package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsbati/exam-service/internal/models"
)

// failingTeacherRepo rejects every create so the account rollback path
// can be observed.
type failingTeacherRepo struct{ *fakeTeacherRepo }

func (r *failingTeacherRepo) Create(_ context.Context, _ *models.Teacher) error {
	return errors.New("storage unavailable")
}

type accountEnv struct {
	store   *memStore
	service AccountService
}

func newAccountEnv(t *testing.T) *accountEnv {
	t.Helper()
	store := newMemStore()
	svc := NewAccountService(
		&fakeAccountRepo{s: store},
		&fakeTeacherRepo{s: store},
		&fakeStudentRepo{s: store},
		zerolog.Nop(),
	)
	return &accountEnv{store: store, service: svc}
}

func TestCreateTeacher(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account and teacher row", func(t *testing.T) {
		env := newAccountEnv(t)

		teacher, err := env.service.CreateTeacher(ctx, &models.CreateTeacherRequest{
			Username: "hart",
			Email:    "hart@school.test",
			Name:     "Ms. Hart",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, teacher.ID)
		assert.Len(t, env.store.accounts, 1)
		assert.Len(t, env.store.teachers, 1)

		role, err := env.service.ResolveRole(ctx, teacher.AccountID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleTeacher, role.Kind)
		assert.Equal(t, teacher.ID, role.TeacherID)
	})

	t.Run("failed teacher row rolls the account back", func(t *testing.T) {
		store := newMemStore()
		svc := NewAccountService(
			&fakeAccountRepo{s: store},
			&failingTeacherRepo{&fakeTeacherRepo{s: store}},
			&fakeStudentRepo{s: store},
			zerolog.Nop(),
		)

		_, err := svc.CreateTeacher(ctx, &models.CreateTeacherRequest{
			Username: "hart",
			Email:    "hart@school.test",
			Name:     "Ms. Hart",
		})
		require.Error(t, err)
		assert.Empty(t, store.accounts)
		assert.Empty(t, store.teachers)
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		env := newAccountEnv(t)

		req := &models.CreateTeacherRequest{
			Username: "hart",
			Email:    "hart@school.test",
			Name:     "Ms. Hart",
		}
		_, err := env.service.CreateTeacher(ctx, req)
		require.NoError(t, err)

		_, err = env.service.CreateTeacher(ctx, req)
		assert.ErrorIs(t, err, models.ErrIntegrityConflict)
		assert.Len(t, env.store.accounts, 1)
	})
}

func TestCreateStudent(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects an unknown grade", func(t *testing.T) {
		env := newAccountEnv(t)

		_, err := env.service.CreateStudent(ctx, &models.CreateStudentRequest{
			Username: "ana",
			Email:    "ana@school.test",
			Name:     "Ana",
			Grade:    13,
		})
		assert.ErrorIs(t, err, models.ErrInvalidGrade)
	})

	t.Run("rejects an unknown teacher id", func(t *testing.T) {
		env := newAccountEnv(t)

		_, err := env.service.CreateStudent(ctx, &models.CreateStudentRequest{
			Username:   "ana",
			Email:      "ana@school.test",
			Name:       "Ana",
			Grade:      models.GradeTen,
			TeacherIDs: []string{"missing"},
		})
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.Empty(t, env.store.accounts)
	})

	t.Run("creates student with teacher set", func(t *testing.T) {
		env := newAccountEnv(t)

		teacher, err := env.service.CreateTeacher(ctx, &models.CreateTeacherRequest{
			Username: "hart", Email: "hart@school.test", Name: "Ms. Hart",
		})
		require.NoError(t, err)

		student, err := env.service.CreateStudent(ctx, &models.CreateStudentRequest{
			Username:   "ana",
			Email:      "ana@school.test",
			Name:       "Ana",
			Grade:      models.GradeTen,
			TeacherIDs: []string{teacher.ID},
		})
		require.NoError(t, err)
		assert.True(t, student.HasTeacher(teacher.ID))

		role, err := env.service.ResolveRole(ctx, student.AccountID)
		require.NoError(t, err)
		assert.Equal(t, models.RoleStudent, role.Kind)
		assert.Equal(t, student.ID, role.StudentID)
	})
}

func TestProvisionSuperuser(t *testing.T) {
	ctx := context.Background()
	env := newAccountEnv(t)

	account, err := env.service.ProvisionSuperuser(ctx, &models.ProvisionSuperuserRequest{
		Username: "admin",
		Email:    "admin@school.test",
		Name:     "Admin",
	})
	require.NoError(t, err)
	assert.True(t, account.IsSuperuser)

	// The superuser also gets a teacher record.
	assert.Len(t, env.store.teachers, 1)

	role, err := env.service.ResolveRole(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperuser, role.Kind)
}

func TestDeleteTeacher(t *testing.T) {
	ctx := context.Background()
	env := newAccountEnv(t)

	teacher, err := env.service.CreateTeacher(ctx, &models.CreateTeacherRequest{
		Username: "hart", Email: "hart@school.test", Name: "Ms. Hart",
	})
	require.NoError(t, err)

	exams := &fakeExamRepo{s: env.store}
	require.NoError(t, exams.Create(ctx, &models.Exam{
		ID:        "e1",
		TeacherID: teacher.ID,
		Title:     "Algebra Midterm",
		Grade:     models.GradeTen,
	}))

	require.NoError(t, env.service.DeleteTeacher(ctx, teacher.ID))

	assert.Empty(t, env.store.teachers)
	assert.Empty(t, env.store.accounts)

	// The exam survives without an owner.
	exam, err := exams.GetByID(ctx, "e1")
	require.NoError(t, err)
	require.NotNil(t, exam)
	assert.Empty(t, exam.TeacherID)

	assert.ErrorIs(t, env.service.DeleteTeacher(ctx, teacher.ID), models.ErrNotFound)
}

func TestDeleteStudent(t *testing.T) {
	ctx := context.Background()
	env := newAccountEnv(t)

	teacher, err := env.service.CreateTeacher(ctx, &models.CreateTeacherRequest{
		Username: "hart", Email: "hart@school.test", Name: "Ms. Hart",
	})
	require.NoError(t, err)

	student, err := env.service.CreateStudent(ctx, &models.CreateStudentRequest{
		Username:   "ana",
		Email:      "ana@school.test",
		Name:       "Ana",
		Grade:      models.GradeTen,
		TeacherIDs: []string{teacher.ID},
	})
	require.NoError(t, err)

	questions := &fakeQuestionRepo{s: env.store}
	exams := &fakeExamRepo{s: env.store}
	answers := &fakeAnswerRepo{s: env.store}
	require.NoError(t, exams.Create(ctx, &models.Exam{ID: "e1", TeacherID: teacher.ID, Grade: models.GradeTen}))
	require.NoError(t, questions.Create(ctx, &models.Question{ID: "q1", ExamID: "e1", Choices: []string{"a"}}))
	require.NoError(t, answers.CreateBatch(ctx, []*models.StudentAnswer{
		{ID: "a1", StudentID: student.ID, QuestionID: "q1", Answer: "a"},
	}))

	require.NoError(t, env.service.DeleteStudent(ctx, student.ID))

	assert.Empty(t, env.store.students)
	assert.Empty(t, env.store.answers)
	assert.ErrorIs(t, env.service.DeleteStudent(ctx, student.ID), models.ErrNotFound)
}

func TestListScoping(t *testing.T) {
	ctx := context.Background()
	env := newAccountEnv(t)

	teacher, err := env.service.CreateTeacher(ctx, &models.CreateTeacherRequest{
		Username: "hart", Email: "hart@school.test", Name: "Ms. Hart",
	})
	require.NoError(t, err)
	other, err := env.service.CreateTeacher(ctx, &models.CreateTeacherRequest{
		Username: "vega", Email: "vega@school.test", Name: "Mr. Vega",
	})
	require.NoError(t, err)

	_, err = env.service.CreateStudent(ctx, &models.CreateStudentRequest{
		Username: "ana", Email: "ana@school.test", Name: "Ana",
		Grade: models.GradeTen, TeacherIDs: []string{teacher.ID},
	})
	require.NoError(t, err)
	_, err = env.service.CreateStudent(ctx, &models.CreateStudentRequest{
		Username: "ben", Email: "ben@school.test", Name: "Ben",
		Grade: models.GradeEleven, TeacherIDs: []string{other.ID},
	})
	require.NoError(t, err)

	super := models.Role{Kind: models.RoleSuperuser}
	resp, err := env.service.ListStudents(ctx, super, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)

	teacherRole := models.Role{Kind: models.RoleTeacher, TeacherID: teacher.ID}
	resp, err = env.service.ListStudents(ctx, teacherRole, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Ana", resp.Students[0].Name)

	_, err = env.service.ListStudents(ctx, models.Role{Kind: models.RoleStudent, StudentID: "x"}, 1, 10)
	assert.ErrorIs(t, err, models.ErrAccessDenied)

	teachers, err := env.service.ListTeachers(ctx, super, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, teachers.Total)

	_, err = env.service.ListTeachers(ctx, teacherRole, 1, 10)
	assert.ErrorIs(t, err, models.ErrAccessDenied)
}
