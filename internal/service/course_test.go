package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"attendapi/internal/model"
	"attendapi/internal/repository"
	repoMocks "attendapi/internal/repository/mocks"
)

func newCourseService(mCourses *repoMocks.MockCourseRepository, mClasses *repoMocks.MockClassRepository, mUsers *repoMocks.MockUserRepository) CourseService {
	return NewCourseService(mCourses, mClasses, mUsers, testCalendar(), zap.NewNop())
}

func TestCourseService_Create(t *testing.T) {
	ctx := context.Background()
	in := NewCourse{Name: "Algebra", TeacherCode: "T001", ClassCode: "CS2401", ScheduleText: "1-16周 星期二[1-2节]A101"}

	tests := []struct {
		name       string
		setupMocks func(mCourses *repoMocks.MockCourseRepository, mClasses *repoMocks.MockClassRepository, mUsers *repoMocks.MockUserRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			setupMocks: func(mCourses *repoMocks.MockCourseRepository, mClasses *repoMocks.MockClassRepository, mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByUsername", ctx, "T001").Return(&model.User{Username: "T001", Role: model.RoleTeacher}, nil)
				mClasses.On("FindByCode", ctx, "CS2401").Return(&model.Class{Code: "CS2401"}, nil)
				mCourses.On("Create", ctx, mock.MatchedBy(func(c *model.Course) bool {
					return c.ID != "" && c.TeacherCode == "T001" && c.ScheduleText == in.ScheduleText
				})).Return(&model.Course{ID: testCourseID, Name: "Algebra"}, nil)
			},
		},
		{
			name: "unknown teacher",
			setupMocks: func(mCourses *repoMocks.MockCourseRepository, mClasses *repoMocks.MockClassRepository, mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByUsername", ctx, "T001").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrUserNotFound,
		},
		{
			name: "teacher code is a student",
			setupMocks: func(mCourses *repoMocks.MockCourseRepository, mClasses *repoMocks.MockClassRepository, mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByUsername", ctx, "T001").Return(&model.User{Role: model.RoleStudent}, nil)
			},
			wantErr: ErrNotATeacher,
		},
		{
			name: "unknown class",
			setupMocks: func(mCourses *repoMocks.MockCourseRepository, mClasses *repoMocks.MockClassRepository, mUsers *repoMocks.MockUserRepository) {
				mUsers.On("FindByUsername", ctx, "T001").Return(&model.User{Role: model.RoleTeacher}, nil)
				mClasses.On("FindByCode", ctx, "CS2401").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrClassNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mCourses := new(repoMocks.MockCourseRepository)
			mClasses := new(repoMocks.MockClassRepository)
			mUsers := new(repoMocks.MockUserRepository)
			svc := newCourseService(mCourses, mClasses, mUsers)
			tt.setupMocks(mCourses, mClasses, mUsers)

			c, err := svc.Create(ctx, in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, testCourseID, c.ID)
			}
			mCourses.AssertExpectations(t)
			mClasses.AssertExpectations(t)
			mUsers.AssertExpectations(t)
		})
	}
}

func TestCourseService_Sessions(t *testing.T) {
	ctx := context.Background()
	mCourses := new(repoMocks.MockCourseRepository)
	svc := newCourseService(mCourses, nil, nil)

	mCourses.On("FindByID", ctx, testCourseID).Return(&model.Course{ID: testCourseID, ScheduleText: "1-3周 星期二[1-2节]A101"}, nil)
	mCourses.On("FindByID", ctx, unscheduledCourseID).Return(&model.Course{ID: unscheduledCourseID, ScheduleText: "whenever"}, nil)
	mCourses.On("FindByID", ctx, missingID).Return(nil, sql.ErrNoRows)

	sessions, err := svc.Sessions(ctx, testCourseID)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "2024-09-03", sessions[0].Date)
	assert.Equal(t, "2024-09-17", sessions[2].Date)

	sessions, err = svc.Sessions(ctx, unscheduledCourseID)
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)

	_, err = svc.Sessions(ctx, missingID)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	_, err = svc.Sessions(ctx, "xyz")
	assert.ErrorIs(t, err, ErrCourseNotFound)
	mCourses.AssertNotCalled(t, "FindByID", ctx, "xyz")
}

func TestCourseService_Lists(t *testing.T) {
	ctx := context.Background()
	mCourses := new(repoMocks.MockCourseRepository)
	svc := newCourseService(mCourses, nil, nil)

	mCourses.On("List", ctx, repository.CourseFilter{TeacherCode: "T001"}).Return([]model.Course{{ID: testCourseID}}, nil)
	mCourses.On("List", ctx, repository.CourseFilter{ClassCode: "CS2401"}).Return([]model.Course{{ID: testCourseID}, {ID: otherCourseID}}, nil)

	byTeacher, err := svc.ListForTeacher(ctx, "T001")
	require.NoError(t, err)
	assert.Len(t, byTeacher, 1)

	byClass, err := svc.ListForClass(ctx, "CS2401")
	require.NoError(t, err)
	assert.Len(t, byClass, 2)

	unbound, err := svc.ListForClass(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, unbound)
	mCourses.AssertExpectations(t)
}
