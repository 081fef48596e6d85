package service

import "time"

// 提醒事项与展示用的时间布局
const (
	appleDueLayout   = "Monday, January 02, 2006 at 03:04:05 PM"
	displayDueLayout = "01/02/2006"
)

// appleDueString 把存储的 UTC 截止时间转成提醒事项可接受的本地时间串
func appleDueString(dueAt string, loc *time.Location) (string, error) {
	t, err := parseDueAt(dueAt)
	if err != nil {
		return "", err
	}
	return t.In(loc).Format(appleDueLayout), nil
}

// displayDueString 截止日期的展示形式（本地日期）
func displayDueString(dueAt string, loc *time.Location) string {
	t, err := parseDueAt(dueAt)
	if err != nil {
		return dueAt
	}
	return t.In(loc).Format(displayDueLayout)
}
