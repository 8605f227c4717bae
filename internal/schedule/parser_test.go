package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Entry
	}{
		{
			name: "single week",
			text: "3周 星期二[1-2节]教学楼A101",
			want: []Entry{{Weeks: []int{3}, Weekday: time.Tuesday, FirstLesson: 1, LastLesson: 2, Location: "教学楼A101"}},
		},
		{
			name: "no spaces and single lesson",
			text: "12周星期日[5节]体育馆",
			want: []Entry{{Weeks: []int{12}, Weekday: time.Sunday, FirstLesson: 5, LastLesson: 5, Location: "体育馆"}},
		},
		{
			name: "week range",
			text: "1-4周 星期五[3-4节]B203",
			want: []Entry{{Weeks: []int{1, 2, 3, 4}, Weekday: time.Friday, FirstLesson: 3, LastLesson: 4, Location: "B203"}},
		},
		{
			name: "odd weeks",
			text: "1-6单周 星期一[1-2节]A1",
			want: []Entry{{Weeks: []int{1, 3, 5}, Weekday: time.Monday, FirstLesson: 1, LastLesson: 2, Location: "A1"}},
		},
		{
			name: "even weeks",
			text: "1-6双周 星期天[1-2节]A1",
			want: []Entry{{Weeks: []int{2, 4, 6}, Weekday: time.Sunday, FirstLesson: 1, LastLesson: 2, Location: "A1"}},
		},
		{
			name: "week list with full-width comma",
			text: "1,3，7-8周 星期三[9-10节]",
			want: []Entry{{Weeks: []int{1, 3, 7, 8}, Weekday: time.Wednesday, FirstLesson: 9, LastLesson: 10, Location: ""}},
		},
		{
			name: "multiple entries",
			text: "1周 星期一[1-2节]A101；2周 星期四[3-4节]B202",
			want: []Entry{
				{Weeks: []int{1}, Weekday: time.Monday, FirstLesson: 1, LastLesson: 2, Location: "A101"},
				{Weeks: []int{2}, Weekday: time.Thursday, FirstLesson: 3, LastLesson: 4, Location: "B202"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "", ErrUnrecognized},
		{"garbage", "every tuesday", ErrUnrecognized},
		{"bad weekday", "3周 星期八[1-2节]A101", ErrUnrecognized},
		{"reversed lessons", "3周 星期二[4-2节]A101", ErrLessonRange},
		{"lesson zero", "3周 星期二[0-2节]A101", ErrLessonRange},
		{"reversed weeks", "8-2周 星期二[1-2节]A101", ErrWeekRange},
		{"week zero", "0周 星期二[1-2节]A101", ErrWeekRange},
		{"last allowed week", "60周 星期二[1-2节]A101", nil},
		{"week past limit", "61周 星期二[1-2节]A101", ErrWeekRange},
		{"huge range", "1-20000000周 星期一[1-2节]A101", ErrWeekRange},
		{"huge week in list", "1,3,99999999周 星期一[1-2节]A101", ErrWeekRange},
		{"parity empties range", "2双周 星期二[1-2节]A101", nil},
		{"one bad entry", "1周 星期一[1-2节]A;nonsense", ErrUnrecognized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_OddOnlyEvenWeek(t *testing.T) {
	_, err := Parse("2单周 星期二[1-2节]A101")
	assert.ErrorIs(t, err, ErrWeekRange)
}
