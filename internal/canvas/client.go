package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ppratick/studySyncAI/config"
)

// ErrUnauthorized 凭证无效或过期
var ErrUnauthorized = errors.New("Canvas 凭证无效")

// Course 远端课程
type Course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Submission 提交状态，列表接口随 include[]=submission 返回
type Submission struct {
	SubmittedAt *string `json:"submitted_at"`
}

// Checkpoint 分段截止时间（讨论作业可能按阶段设多个）
type Checkpoint struct {
	DueAt string `json:"due_at"`
}

// ItemAssignment 讨论条目挂载的作业信息
type ItemAssignment struct {
	DueAt       string       `json:"due_at"`
	Checkpoints []Checkpoint `json:"checkpoints"`
}

// Item 课程条目：普通作业用 Name/DueAt，讨论用 Title 且
// 截止时间挂在 Assignment 下。服务层统一归一化。
type Item struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	DueAt       string          `json:"due_at"`
	Description string          `json:"description"`
	Message     string          `json:"message"`
	Submission  *Submission     `json:"submission"`
	Assignment  *ItemAssignment `json:"assignment"`
}

// DisplayName 条目展示名（作业为 name，讨论为 title）
func (it *Item) DisplayName() string {
	if it.Name != "" {
		return it.Name
	}
	return it.Title
}

// Client Canvas REST API 客户端
type Client struct {
	baseURL string
	token   string
	perPage int
	http    *http.Client
	logger  *zap.Logger
}

// NewClient 创建 Canvas 客户端
func NewClient(cfg config.CanvasConfig, logger *zap.Logger) *Client {
	domain := strings.TrimSuffix(strings.TrimSpace(cfg.Domain), "/")
	if domain != "" && !strings.HasPrefix(domain, "http") {
		domain = "https://" + domain
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = 50
	}
	return &Client{
		baseURL: domain,
		token:   cfg.APIToken,
		perPage: perPage,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Configured 凭证是否齐全
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.token != ""
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("请求 %s 失败: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("请求 %s 返回 %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析 %s 响应失败: %w", path, err)
	}
	return nil
}

// ListFavoriteCourses 拉取收藏课程列表
func (c *Client) ListFavoriteCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := c.get(ctx, "/api/v1/users/self/favorites/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// FetchAssignments 拉取课程作业，附带提交状态与描述
func (c *Client) FetchAssignments(ctx context.Context, courseID int64) ([]Item, error) {
	q := url.Values{}
	q.Add("include[]", "submission")
	q.Add("include[]", "description")
	q.Set("per_page", fmt.Sprintf("%d", c.perPage))

	var items []Item
	path := fmt.Sprintf("/api/v1/courses/%d/assignments", courseID)
	if err := c.get(ctx, path, q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// FetchDiscussions 拉取课程讨论主题
func (c *Client) FetchDiscussions(ctx context.Context, courseID int64) ([]Item, error) {
	q := url.Values{}
	q.Set("per_page", fmt.Sprintf("%d", c.perPage))

	var items []Item
	path := fmt.Sprintf("/api/v1/courses/%d/discussion_topics", courseID)
	if err := c.get(ctx, path, q, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// FetchCourseItems 并发拉取课程的作业与讨论并合并。
// 单类拉取失败降级为空列表并记录日志，两类同时失败才算课程失败。
func (c *Client) FetchCourseItems(ctx context.Context, courseID int64) ([]Item, error) {
	var (
		wg          sync.WaitGroup
		assignments []Item
		discussions []Item
		aErr, dErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		assignments, aErr = c.FetchAssignments(ctx, courseID)
	}()
	go func() {
		defer wg.Done()
		discussions, dErr = c.FetchDiscussions(ctx, courseID)
	}()
	wg.Wait()

	if aErr != nil && dErr != nil {
		return nil, fmt.Errorf("课程 %d 抓取失败: %w", courseID, aErr)
	}
	if aErr != nil {
		c.logger.Warn("作业列表拉取失败，降级为空", zap.Int64("course_id", courseID), zap.Error(aErr))
		assignments = nil
	}
	if dErr != nil {
		c.logger.Warn("讨论列表拉取失败，降级为空", zap.Int64("course_id", courseID), zap.Error(dErr))
		discussions = nil
	}

	return append(assignments, discussions...), nil
}
