package entity

import "time"

// WeeklyReport is one user's report for one week. Weeks run Monday to
// Sunday; (UserID, WeekStart) is unique.
type WeeklyReport struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	WeekStart    string    `json:"week_start"` // YYYY-MM-DD, always a Monday
	WeekEnd      string    `json:"week_end"`
	Content      string    `json:"content"`
	Achievements string    `json:"achievements"`
	Challenges   string    `json:"challenges"`
	NextWeekPlan string    `json:"next_week_plan"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	UserName       string `json:"user_name,omitempty"`
	UserDepartment string `json:"department,omitempty"`
	UserEmployeeID string `json:"employee_id,omitempty"`
}

// WeekOf returns the Monday..Sunday window containing t, formatted as
// YYYY-MM-DD dates.
func WeekOf(t time.Time) (weekStart, weekEnd string) {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week it ends
	}
	monday := t.AddDate(0, 0, 1-weekday)
	sunday := monday.AddDate(0, 0, 6)
	return monday.Format("2006-01-02"), sunday.Format("2006-01-02")
}
