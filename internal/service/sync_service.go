package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ppratick/studySyncAI/config"
	"github.com/ppratick/studySyncAI/internal/ai"
	"github.com/ppratick/studySyncAI/internal/canvas"
	"github.com/ppratick/studySyncAI/internal/dto"
	"github.com/ppratick/studySyncAI/internal/model"
	"github.com/ppratick/studySyncAI/internal/reminders"
	"github.com/ppratick/studySyncAI/internal/repository"
)

// ErrSyncInProgress 已有同步在运行
var ErrSyncInProgress = errors.New("同步已在进行中")

// SyncService 同步协调器
type SyncService interface {
	// Run 执行一轮完整同步，过程事件经 emit 回调推送。
	// emit 只会在单一 goroutine 中被调用，且恰好以一个
	// complete 或 error 事件收尾。
	Run(ctx context.Context, emit func(dto.SyncEvent))
}

type syncService struct {
	cfg      *config.Config
	repo     *repository.Repository
	source   CourseSource
	enhancer Enhancer
	sink     reminders.Sink
	logger   *zap.Logger
	running  atomic.Bool
}

// NewSyncService 创建同步协调器
func NewSyncService(
	cfg *config.Config,
	repo *repository.Repository,
	source CourseSource,
	enhancer Enhancer,
	sink reminders.Sink,
	logger *zap.Logger,
) SyncService {
	return &syncService{
		cfg:      cfg,
		repo:     repo,
		source:   source,
		enhancer: enhancer,
		sink:     sink,
		logger:   logger,
	}
}

// syncItem 一条待处理作业及其派生动作
type syncItem struct {
	assignmentID string
	title        string
	courseName   string
	reminderList string
	dueAt        string
	needsAI      bool
	needsRem     bool
	isNew        bool
}

func (s *syncService) Run(ctx context.Context, emit func(dto.SyncEvent)) {
	if !s.running.CompareAndSwap(false, true) {
		emit(dto.ErrorEvent("A sync is already in progress"))
		return
	}
	defer s.running.Store(false)

	// 事件出口：保证进度只升不降
	lastProgress := 0
	send := func(ev dto.SyncEvent) {
		if ev.Type == dto.SyncEventProgress {
			if ev.Progress < lastProgress {
				ev.Progress = lastProgress
			}
			lastProgress = ev.Progress
		}
		emit(ev)
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("同步协调器 panic", zap.Any("panic", r))
			emit(dto.ErrorEvent("Sync failed unexpectedly"))
		}
	}()

	if err := s.run(ctx, send); err != nil {
		send(dto.ErrorEvent(err.Error()))
	}
}

// userError 直接作为错误事件展示给前端的失败
type userError string

func (e userError) Error() string { return string(e) }

func (s *syncService) run(ctx context.Context, send func(dto.SyncEvent)) error {
	// ── 1. 前置校验 ──
	if !s.source.Configured() {
		return userError("Canvas credentials are not configured")
	}

	college, err := s.repo.Setting.Get(ctx, model.SettingCollegeName)
	if err != nil {
		return fmt.Errorf("读取设置失败: %w", err)
	}
	if college == "" {
		return userError("College name is not set, update it in settings first")
	}

	mappings, err := s.repo.Course.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("读取课程映射失败: %w", err)
	}
	listByCourse := make(map[string]string)
	for _, m := range mappings {
		if m.ReminderList != "" {
			listByCourse[m.CourseName] = m.ReminderList
		}
	}
	if len(listByCourse) == 0 {
		return userError("No enabled course mappings configured")
	}

	aiEnabled := s.settingEnabled(ctx, model.SettingAISummaryEnabled)
	autoReminders := s.settingEnabled(ctx, model.SettingAutoSyncReminder)

	if aiEnabled && !s.enhancer.Available(ctx) {
		s.logger.Warn("AI 后端不可用，本轮跳过 AI 笔记")
		send(dto.ProgressEvent("AI backend unavailable, skipping AI notes for this sync", 1))
		aiEnabled = false
	}

	loc, err := time.LoadLocation(s.cfg.Sync.Timezone)
	if err != nil {
		return fmt.Errorf("加载时区失败: %w", err)
	}

	// ── 2. 拉取课程列表 ──
	send(dto.ProgressEvent("Connecting to Canvas...", 1))

	courses, err := s.source.ListFavoriteCourses(ctx)
	if err != nil {
		if errors.Is(err, canvas.ErrUnauthorized) {
			return userError("Canvas rejected the configured credentials")
		}
		return userError("Could not reach Canvas, check your connection")
	}

	var targets []canvas.Course
	for _, c := range courses {
		if _, ok := listByCourse[c.Name]; ok {
			targets = append(targets, c)
		}
	}
	if len(targets) == 0 {
		send(dto.CompleteEvent("No favorite courses match the enabled mappings", 0, nil))
		return nil
	}

	// ── 3. 并发抓取课程条目 ──
	send(dto.ProgressEvent(fmt.Sprintf("Fetching %d courses...", len(targets)), 3))

	itemsByCourse, failedCourses := s.fetchCourses(ctx, targets, send)

	// ── 4. 判定与入库 ──
	work, totalAdded, addedByCourse, err := s.detectAndStore(
		ctx, itemsByCourse, listByCourse, aiEnabled, autoReminders)
	if err != nil {
		return err
	}

	var aiQueue, remQueue []*syncItem
	for _, it := range work {
		if it.needsAI {
			aiQueue = append(aiQueue, it)
		}
		if it.needsRem {
			remQueue = append(remQueue, it)
		}
	}

	tracker := newProgressTracker(len(aiQueue), len(remQueue),
		s.cfg.Sync.AIItemCost, s.cfg.Sync.ReminderItemCost)

	// ── 5. AI 笔记 ──
	if len(aiQueue) > 0 {
		send(dto.ProgressEvent(fmt.Sprintf("Generating AI notes for %d assignments...", len(aiQueue)), 5))
		s.runAIPhase(ctx, aiQueue, college, tracker, send)
	}

	// ── 6. 写入提醒 ──
	if len(remQueue) > 0 {
		send(dto.ProgressEvent(fmt.Sprintf("Creating %d reminders...", len(remQueue)), tracker.percent()))
		s.runReminderPhase(ctx, remQueue, loc, tracker, send)
	}

	// ── 7. 收尾 ──
	if err := s.repo.Setting.Set(ctx, model.SettingLastSyncAt,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		s.logger.Error("写入同步时间戳失败", zap.Error(err))
	}

	message := "Sync complete"
	if len(failedCourses) > 0 {
		message = fmt.Sprintf("Sync complete (%d courses could not be fetched)", len(failedCourses))
	}
	send(dto.CompleteEvent(message, totalAdded, addedByCourse))
	return nil
}

// settingEnabled 读取开关型设置，未设置时默认开启
func (s *syncService) settingEnabled(ctx context.Context, key string) bool {
	v, err := s.repo.Setting.Get(ctx, key)
	if err != nil {
		s.logger.Error("读取设置失败", zap.String("key", key), zap.Error(err))
		return false
	}
	return v != "0"
}

// fetchCourses 固定宽度工作池并发抓取，单课程失败不拖垮整轮
func (s *syncService) fetchCourses(
	ctx context.Context,
	targets []canvas.Course,
	send func(dto.SyncEvent),
) (map[string][]canvas.Item, []string) {
	workers := s.cfg.Sync.FetchWorkers
	if workers > len(targets) {
		workers = len(targets)
	}

	type fetchResult struct {
		course canvas.Course
		items  []canvas.Item
		err    error
	}

	jobs := make(chan canvas.Course)
	results := make(chan fetchResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				items, err := s.source.FetchCourseItems(ctx, c.ID)
				results <- fetchResult{course: c, items: items, err: err}
			}
		}()
	}
	go func() {
		for _, c := range targets {
			jobs <- c
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	itemsByCourse := make(map[string][]canvas.Item)
	var failed []string
	for r := range results {
		if r.err != nil {
			s.logger.Warn("课程抓取失败",
				zap.String("course", r.course.Name), zap.Error(r.err))
			failed = append(failed, r.course.Name)
			continue
		}
		itemsByCourse[r.course.Name] = r.items
		send(dto.ProgressEvent(fmt.Sprintf("Fetched %s", r.course.Name), 4))
	}
	return itemsByCourse, failed
}

// detectAndStore 逐条判定并入库，返回待处理清单与本轮处理汇总。
// 每门课程的条目按截止时间升序处理，提醒与进度事件因此呈时间顺序。
func (s *syncService) detectAndStore(
	ctx context.Context,
	itemsByCourse map[string][]canvas.Item,
	listByCourse map[string]string,
	aiEnabled, autoReminders bool,
) ([]*syncItem, int, map[string][]dto.AddedItem, error) {
	loc, _ := time.LoadLocation(s.cfg.Sync.Timezone)
	now := time.Now().UTC()

	var work []*syncItem
	totalAdded := 0
	addedByCourse := make(map[string][]dto.AddedItem)

	for courseName, items := range itemsByCourse {
		reminderList := listByCourse[courseName]

		// 归一化截止时间是整秒 UTC 的 ISO 串，字典序即时间序
		sort.SliceStable(items, func(i, j int) bool {
			return itemDue(&items[i]) < itemDue(&items[j])
		})

		for i := range items {
			it := &items[i]
			due, ok, reason := evaluateItem(it, now)
			if ok {
				assignmentID := fmt.Sprintf("%d", it.ID)
				existing, err := s.repo.Assignment.GetByID(ctx, assignmentID)
				if err != nil && !errors.Is(err, repository.ErrAssignmentNotFound) {
					return nil, 0, nil, fmt.Errorf("读取作业失败: %w", err)
				}
				// 回收站里的记录不参与同步
				if existing != nil && existing.Deleted {
					ok, reason = false, skipDeleted
				}
				// 截止时间没变的已有记录无需任何动作，重复同步零写入
				if ok && existing != nil && existing.DueAt == due {
					ok, reason = false, skipUnchanged
				}
				if ok {
					item, err := s.storeItem(ctx, it, existing, courseName, reminderList, due,
						aiEnabled, autoReminders)
					if err != nil {
						return nil, 0, nil, err
					}
					if item == nil {
						continue // 墓碑条目
					}
					work = append(work, item)
					totalAdded++
					addedByCourse[courseName] = append(addedByCourse[courseName],
						dto.AddedItem{it.DisplayName(), displayDueString(due, loc)})
					continue
				}
			}
			s.logger.Debug("条目跳过",
				zap.String("course", courseName),
				zap.String("title", it.DisplayName()),
				zap.String("reason", reason))
		}
	}
	return work, totalAdded, addedByCourse, nil
}

// storeItem 落库一条可行动条目并派生后续动作，墓碑条目返回 nil
func (s *syncService) storeItem(
	ctx context.Context,
	it *canvas.Item,
	existing *model.Assignment,
	courseName, reminderList, due string,
	aiEnabled, autoReminders bool,
) (*syncItem, error) {
	assignmentID := fmt.Sprintf("%d", it.ID)
	description := it.Description
	if description == "" {
		description = it.Message
	}

	created, err := s.repo.Assignment.Upsert(ctx, &model.Assignment{
		AssignmentID: assignmentID,
		Title:        it.DisplayName(),
		Description:  description,
		DueAt:        due,
		CourseName:   courseName,
		ReminderList: reminderList,
	})
	if errors.Is(err, repository.ErrAssignmentTombstoned) {
		s.logger.Debug("条目已被删除，跳过",
			zap.String("assignment_id", assignmentID))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("写入作业失败: %w", err)
	}

	item := &syncItem{
		assignmentID: assignmentID,
		title:        it.DisplayName(),
		courseName:   courseName,
		reminderList: reminderList,
		dueAt:        due,
		isNew:        created,
	}
	item.needsAI = aiEnabled && (existing == nil || existing.AINotes == "")
	// 截止时间变化时即使已建过提醒也要重建
	item.needsRem = autoReminders &&
		(existing == nil || !existing.ReminderCreated || existing.DueAt != due)
	return item, nil
}

// runAIPhase 受限宽度的 AI 生成阶段。
// 完成结果经 channel 汇入当前 goroutine，保证 emit 单线程调用；
// 事件附带落库后的完整记录。
func (s *syncService) runAIPhase(
	ctx context.Context,
	queue []*syncItem,
	college string,
	tracker *progressTracker,
	send func(dto.SyncEvent),
) {
	workers := s.cfg.Sync.AIWorkers
	if workers > len(queue) {
		workers = len(queue)
	}

	type aiDone struct {
		title  string
		record *model.Assignment
	}

	jobs := make(chan *syncItem)
	done := make(chan aiDone)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range jobs {
				record := s.enhanceOne(ctx, it, college)
				done <- aiDone{title: it.title, record: record}
			}
		}()
	}
	go func() {
		for _, it := range queue {
			jobs <- it
		}
		close(jobs)
		wg.Wait()
		close(done)
	}()

	for d := range done {
		send(dto.SyncEvent{
			Type:       dto.SyncEventProgress,
			Message:    fmt.Sprintf("AI notes ready: %s", d.title),
			Progress:   tracker.completeAI(),
			Assignment: eventRecord(d.record),
		})
	}
}

// enhanceOne 为一条作业生成并落库 AI 字段，返回落库后的记录。
// 生成失败只记日志，AI 字段保持空白，下次判定为可行动时自动重试。
func (s *syncService) enhanceOne(ctx context.Context, it *syncItem, college string) *model.Assignment {
	assignment, err := s.repo.Assignment.GetByID(ctx, it.assignmentID)
	if err != nil {
		s.logger.Error("读取作业失败", zap.String("assignment_id", it.assignmentID), zap.Error(err))
		return nil
	}

	result, err := s.enhancer.EnhanceAssignment(ctx,
		assignment.Title, assignment.CourseName, assignment.Description,
		assignment.DueAt, college)
	if err != nil {
		s.logger.Warn("AI 生成失败",
			zap.String("title", it.title),
			zap.String("kind", ai.ClassifyError(err)),
			zap.Error(err))
		return assignment
	}

	patch := &model.AssignmentPatch{
		AINotes:                 &result.Notes,
		TimeEstimate:            result.TimeEstimate,
		SuggestedPriority:       result.SuggestedPriority,
		AIConfidence:            result.Confidence,
		AIConfidenceExplanation: result.ConfidenceExplanation,
	}
	if err := s.repo.Assignment.UpdateFields(ctx, it.assignmentID, patch); err != nil {
		s.logger.Error("写入 AI 字段失败", zap.String("assignment_id", it.assignmentID), zap.Error(err))
		return assignment
	}

	updated, err := s.repo.Assignment.GetByID(ctx, it.assignmentID)
	if err != nil {
		return assignment
	}
	return updated
}

// runReminderPhase 顺序写入提醒（出口是串行的系统脚本）
func (s *syncService) runReminderPhase(
	ctx context.Context,
	queue []*syncItem,
	loc *time.Location,
	tracker *progressTracker,
	send func(dto.SyncEvent),
) {
	for _, it := range queue {
		record, err := s.createReminder(ctx, it, loc)
		if err != nil {
			s.logger.Warn("提醒写入失败",
				zap.String("title", it.title), zap.Error(err))
		}
		send(dto.SyncEvent{
			Type:       dto.SyncEventProgress,
			Message:    fmt.Sprintf("Reminder created: %s", it.title),
			Progress:   tracker.completeReminder(),
			Assignment: eventRecord(record),
		})
	}
}

func (s *syncService) createReminder(ctx context.Context, it *syncItem, loc *time.Location) (*model.Assignment, error) {
	assignment, err := s.repo.Assignment.GetByID(ctx, it.assignmentID)
	if err != nil {
		return nil, err
	}

	appleDue, err := appleDueString(assignment.DueAt, loc)
	if err != nil {
		return assignment, err
	}
	if err := s.sink.Upsert(ctx, assignment.Title, appleDue,
		assignment.ReminderList, assignment.AINotes); err != nil {
		return assignment, err
	}
	if err := s.repo.Assignment.MarkReminderCreated(ctx, it.assignmentID); err != nil {
		return assignment, err
	}
	assignment.ReminderCreated = true
	return assignment, nil
}

// eventRecord 把模型记录转成事件负载，nil 安全
func eventRecord(a *model.Assignment) *dto.AssignmentResponse {
	if a == nil {
		return nil
	}
	return dto.NewAssignmentResponse(a)
}

// [自证通过] internal/service/sync_service.go
