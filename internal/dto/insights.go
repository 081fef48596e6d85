package dto

import "time"

// InsightsResponse 学期洞察响应
//
// Insights 为生成模型产出的 JSON 对象（结构由提示词约定，服务端不强校验），
// Cached 标记本次响应是否命中缓存。
type InsightsResponse struct {
	Insights    map[string]interface{} `json:"insights"`
	GeneratedAt time.Time              `json:"generated_at"`
	EndDate     string                 `json:"end_date,omitempty"`
	Cached      bool                   `json:"cached"`
}

// InsightsAvailabilityResponse 洞察可用性检查响应
type InsightsAvailabilityResponse struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}
