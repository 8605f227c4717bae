package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"attendapi/internal/model"
	"attendapi/internal/schedule"
)

var cst = time.FixedZone("CST", 8*3600)

const (
	testCourseID        = "5b0e8f7e-3c1a-4d2b-9f6e-1a2b3c4d5e6f"
	otherCourseID       = "9d3c2b1a-7e6f-4a5b-8c9d-0e1f2a3b4c5d"
	unscheduledCourseID = "0f1e2d3c-4b5a-4968-8776-655443322110"
	testAttendanceID    = "c8a4e1f2-6d3b-4e7a-9b1c-2d3e4f5a6b7c"
	missingID           = "00000000-0000-4000-8000-000000000001"
)

// Week 1 starts Monday 2024-09-02.
func testCalendar() *schedule.Calendar {
	return schedule.NewCalendar(time.Date(2024, 9, 2, 0, 0, 0, 0, cst), nil, cst)
}

func TestActor_CanManage(t *testing.T) {
	c := &model.Course{TeacherCode: "T001"}

	assert.True(t, Actor{Role: model.RoleAdmin}.canManage(c))
	assert.True(t, Actor{Username: "T001", Role: model.RoleTeacher}.canManage(c))
	assert.False(t, Actor{Username: "T002", Role: model.RoleTeacher}.canManage(c))
	assert.False(t, Actor{Username: "T001", Role: model.RoleStudent}.canManage(c))
}

func TestScheduleResolver_Degrades(t *testing.T) {
	r := scheduleResolver{cal: testCalendar(), log: zap.NewNop()}

	assert.Empty(t, r.sessions(&model.Course{ScheduleText: "every day after lunch"}))
	assert.Empty(t, r.sessions(&model.Course{ScheduleText: ""}))
	assert.Empty(t, r.sessions(&model.Course{ScheduleText: "1周 星期一[12-14节]A"}))
	assert.Len(t, r.sessions(&model.Course{ScheduleText: "1-2周 星期二[1-2节]A101"}), 2)
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.0, ratio(3, 0))
	assert.Equal(t, 0.6667, ratio(2, 3))
	assert.Equal(t, 1.0, ratio(5, 5))
}
