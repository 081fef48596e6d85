package dto

// CourseResponse 课程视图：远端收藏课程与本地映射的合并结果
// ID 为 0 表示课程只存在于本地映射（远端已不可见）
type CourseResponse struct {
	ID           int64  `json:"id,omitempty"`
	Name         string `json:"name"`
	ReminderList string `json:"reminder_list"`
	Enabled      bool   `json:"enabled"`
}

// SaveCourseMappingRequest 保存课程映射请求
type SaveCourseMappingRequest struct {
	CourseName   string `json:"course_name" binding:"required"`
	ReminderList string `json:"reminder_list" binding:"required"`
}

// CourseNameRequest 仅携带课程名的请求体
type CourseNameRequest struct {
	CourseName string `json:"course_name" binding:"required"`
}
