package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"attendapi/internal/model"
	repoMocks "attendapi/internal/repository/mocks"
)

func TestClassService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("generates six digit code", func(t *testing.T) {
		mClasses := new(repoMocks.MockClassRepository)
		svc := NewClassService(mClasses, new(repoMocks.MockUserRepository), zap.NewNop())

		mClasses.On("Create", ctx, mock.MatchedBy(func(c *model.Class) bool {
			if len(c.VerificationCode) != VerificationCodeLength {
				return false
			}
			for _, r := range c.VerificationCode {
				if r < '0' || r > '9' {
					return false
				}
			}
			return c.Code == "CS2401" && !c.CreatedAt.IsZero()
		})).Return(&model.Class{Code: "CS2401", VerificationCode: "123456"}, nil)

		c, err := svc.Create(ctx, "CS2401", "Computer Science 24-1")

		require.NoError(t, err)
		assert.Equal(t, "CS2401", c.Code)
		mClasses.AssertExpectations(t)
	})

	t.Run("duplicate", func(t *testing.T) {
		mClasses := new(repoMocks.MockClassRepository)
		svc := NewClassService(mClasses, new(repoMocks.MockUserRepository), zap.NewNop())
		mClasses.On("Create", ctx, mock.Anything).Return(nil, &pgconn.PgError{Code: "23505"})

		_, err := svc.Create(ctx, "CS2401", "dup")

		assert.ErrorIs(t, err, ErrClassExists)
	})
}

func TestClassService_RegenerateVerificationCode(t *testing.T) {
	ctx := context.Background()
	mClasses := new(repoMocks.MockClassRepository)
	svc := NewClassService(mClasses, new(repoMocks.MockUserRepository), zap.NewNop())

	mClasses.On("FindByCode", ctx, "CS2401").Return(&model.Class{Code: "CS2401", VerificationCode: "000000"}, nil)
	mClasses.On("UpdateVerificationCode", ctx, "CS2401", mock.AnythingOfType("string")).Return(nil)
	mClasses.On("FindByCode", ctx, "none").Return(nil, sql.ErrNoRows)

	c, err := svc.RegenerateVerificationCode(ctx, "CS2401")
	require.NoError(t, err)
	assert.Len(t, c.VerificationCode, VerificationCodeLength)

	_, err = svc.RegenerateVerificationCode(ctx, "none")
	assert.ErrorIs(t, err, ErrClassNotFound)
	mClasses.AssertExpectations(t)
}

func TestClassService_Bind(t *testing.T) {
	ctx := context.Background()
	class := &model.Class{Code: "CS2401", VerificationCode: "482913"}

	tests := []struct {
		name       string
		student    *model.User
		classCode  string
		verifyCode string
		setupMocks func(mClasses *repoMocks.MockClassRepository, mUsers *repoMocks.MockUserRepository)
		wantErr    error
		wantBind   bool
	}{
		{
			name:       "binds unbound student",
			student:    &model.User{ID: "u-1", Username: "S001", Role: model.RoleStudent},
			classCode:  "CS2401",
			verifyCode: "482913",
			setupMocks: func(mClasses *repoMocks.MockClassRepository, mUsers *repoMocks.MockUserRepository) {
				mClasses.On("FindByCode", ctx, "CS2401").Return(class, nil)
				mUsers.On("BindClass", ctx, "u-1", "CS2401").Return(nil)
			},
			wantBind: true,
		},
		{
			name:       "same class is idempotent",
			student:    &model.User{ID: "u-1", Username: "S001", Role: model.RoleStudent, ClassCode: "CS2401"},
			classCode:  "CS2401",
			verifyCode: "482913",
			setupMocks: func(mClasses *repoMocks.MockClassRepository, mUsers *repoMocks.MockUserRepository) {
				mClasses.On("FindByCode", ctx, "CS2401").Return(class, nil)
			},
		},
		{
			name:       "wrong verification code",
			student:    &model.User{ID: "u-1", Role: model.RoleStudent},
			classCode:  "CS2401",
			verifyCode: "111111",
			setupMocks: func(mClasses *repoMocks.MockClassRepository, mUsers *repoMocks.MockUserRepository) {
				mClasses.On("FindByCode", ctx, "CS2401").Return(class, nil)
			},
			wantErr: ErrVerificationMismatch,
		},
		{
			name:       "bound elsewhere",
			student:    &model.User{ID: "u-1", Role: model.RoleStudent, ClassCode: "EE2401"},
			classCode:  "CS2401",
			verifyCode: "482913",
			setupMocks: func(mClasses *repoMocks.MockClassRepository, mUsers *repoMocks.MockUserRepository) {
				mClasses.On("FindByCode", ctx, "CS2401").Return(class, nil)
			},
			wantErr: ErrAlreadyBound,
		},
		{
			name:       "unknown class",
			student:    &model.User{ID: "u-1", Role: model.RoleStudent},
			classCode:  "XX",
			verifyCode: "482913",
			setupMocks: func(mClasses *repoMocks.MockClassRepository, mUsers *repoMocks.MockUserRepository) {
				mClasses.On("FindByCode", ctx, "XX").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrClassNotFound,
		},
		{
			name:       "teacher cannot bind",
			student:    &model.User{ID: "u-1", Role: model.RoleTeacher},
			classCode:  "CS2401",
			verifyCode: "482913",
			setupMocks: func(mClasses *repoMocks.MockClassRepository, mUsers *repoMocks.MockUserRepository) {},
			wantErr:    ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mClasses := new(repoMocks.MockClassRepository)
			mUsers := new(repoMocks.MockUserRepository)
			svc := NewClassService(mClasses, mUsers, zap.NewNop())

			mUsers.On("FindByID", ctx, "u-1").Return(tt.student, nil)
			tt.setupMocks(mClasses, mUsers)

			u, err := svc.Bind(ctx, "u-1", tt.classCode, tt.verifyCode)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "CS2401", u.ClassCode)
			}
			if !tt.wantBind {
				mUsers.AssertNotCalled(t, "BindClass", mock.Anything, mock.Anything, mock.Anything)
			}
			mClasses.AssertExpectations(t)
			mUsers.AssertExpectations(t)
		})
	}
}

func TestClassService_ListStudents(t *testing.T) {
	ctx := context.Background()
	mClasses := new(repoMocks.MockClassRepository)
	mUsers := new(repoMocks.MockUserRepository)
	svc := NewClassService(mClasses, mUsers, zap.NewNop())

	mClasses.On("FindByCode", ctx, "CS2401").Return(&model.Class{Code: "CS2401"}, nil)
	mUsers.On("ListByClass", ctx, "CS2401").Return([]model.User{{Username: "S001"}}, nil)

	users, err := svc.ListStudents(ctx, "CS2401")

	require.NoError(t, err)
	assert.Len(t, users, 1)
}
