package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ppratick/studySyncAI/internal/model"
	"github.com/ppratick/studySyncAI/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "studysync-repo-test-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建临时目录失败: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	testDB, err = gorm.Open(sqlite.Open(filepath.Join(dir, "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法打开测试数据库: %v\n", err)
		os.Exit(1)
	}

	err = testDB.AutoMigrate(
		&model.Assignment{},
		&model.DeletedAssignment{},
		&model.CourseMapping{},
		&model.Setting{},
		&model.AIInsight{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// cleanTables 清空全部表，保证用例之间互不干扰
func cleanTables(t *testing.T) {
	t.Helper()
	for _, m := range []interface{}{
		&model.Assignment{}, &model.DeletedAssignment{},
		&model.CourseMapping{}, &model.Setting{}, &model.AIInsight{},
	} {
		if err := testDB.Where("1 = 1").Delete(m).Error; err != nil {
			t.Fatalf("清空表失败: %v", err)
		}
	}
}

func sampleAssignment(id string) *model.Assignment {
	return &model.Assignment{
		AssignmentID: id,
		Title:        "Homework 3",
		Description:  "Chapters 4-6",
		DueAt:        "2026-10-01T04:59:59Z",
		CourseName:   "CS 0445",
		ReminderList: "CS 445 Reminders",
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Assignment Upsert
// ═══════════════════════════════════════════════════════════

func TestAssignmentUpsert_CreatesNew(t *testing.T) {
	cleanTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	created, err := repo.Assignment.Upsert(ctx, sampleAssignment("a-1"))
	if err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}
	if !created {
		t.Error("首次写入应返回 created=true")
	}

	got, err := repo.Assignment.GetByID(ctx, "a-1")
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}
	if got.Status != model.StatusNotStarted {
		t.Errorf("期望默认状态 %q，得到 %q", model.StatusNotStarted, got.Status)
	}
	if got.Priority != model.PriorityMedium {
		t.Errorf("期望默认优先级 %q，得到 %q", model.PriorityMedium, got.Priority)
	}
}

func TestAssignmentUpsert_PreservesUserFields(t *testing.T) {
	cleanTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if _, err := repo.Assignment.Upsert(ctx, sampleAssignment("a-2")); err != nil {
		t.Fatalf("首次 Upsert 失败: %v", err)
	}

	// 用户编辑状态、优先级、备注并标记已建提醒
	status := model.StatusInProgress
	priority := model.PriorityHigh
	notes := "重点复习第 5 章"
	done := true
	err := repo.Assignment.UpdateFields(ctx, "a-2", &model.AssignmentPatch{
		Status: &status, Priority: &priority, UserNotes: &notes, ReminderCreated: &done,
	})
	if err != nil {
		t.Fatalf("UpdateFields 失败: %v", err)
	}

	// 再次同步：标题与截止时间变了
	incoming := sampleAssignment("a-2")
	incoming.Title = "Homework 3 (revised)"
	incoming.DueAt = "2026-10-08T04:59:59Z"
	created, err := repo.Assignment.Upsert(ctx, incoming)
	if err != nil {
		t.Fatalf("再次 Upsert 失败: %v", err)
	}
	if created {
		t.Error("已有记录不应返回 created=true")
	}

	got, _ := repo.Assignment.GetByID(ctx, "a-2")
	if got.Title != "Homework 3 (revised)" {
		t.Errorf("标题应被更新，得到 %q", got.Title)
	}
	if got.DueAt != "2026-10-08T04:59:59Z" {
		t.Errorf("截止时间应被更新，得到 %q", got.DueAt)
	}
	if got.Status != model.StatusInProgress {
		t.Errorf("用户状态应保留，得到 %q", got.Status)
	}
	if got.Priority != model.PriorityHigh {
		t.Errorf("用户优先级应保留，得到 %q", got.Priority)
	}
	if got.UserNotes != "重点复习第 5 章" {
		t.Errorf("用户备注应保留，得到 %q", got.UserNotes)
	}
	if !got.ReminderCreated {
		t.Error("提醒标记应保留")
	}
}

func TestAssignmentUpsert_PreservesAIFieldsWhenIncomingEmpty(t *testing.T) {
	cleanTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if _, err := repo.Assignment.Upsert(ctx, sampleAssignment("a-3")); err != nil {
		t.Fatalf("首次 Upsert 失败: %v", err)
	}

	aiNotes := "Estimated effort: moderate"
	est := 3.5
	conf := 4
	err := repo.Assignment.UpdateFields(ctx, "a-3", &model.AssignmentPatch{
		AINotes: &aiNotes, TimeEstimate: &est, AIConfidence: &conf,
	})
	if err != nil {
		t.Fatalf("写入 AI 字段失败: %v", err)
	}

	// 新一轮同步不带 AI 字段
	if _, err := repo.Assignment.Upsert(ctx, sampleAssignment("a-3")); err != nil {
		t.Fatalf("再次 Upsert 失败: %v", err)
	}

	got, _ := repo.Assignment.GetByID(ctx, "a-3")
	if got.AINotes != "Estimated effort: moderate" {
		t.Errorf("AI 备注应保留，得到 %q", got.AINotes)
	}
	if got.TimeEstimate == nil || *got.TimeEstimate != 3.5 {
		t.Errorf("时间估计应保留，得到 %v", got.TimeEstimate)
	}
	if got.AIConfidence == nil || *got.AIConfidence != 4 {
		t.Errorf("置信度应保留，得到 %v", got.AIConfidence)
	}
}

func TestAssignmentUpsert_TombstoneBlocksResurrection(t *testing.T) {
	cleanTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if _, err := repo.Assignment.Upsert(ctx, sampleAssignment("42")); err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}
	if err := repo.Assignment.PermanentDelete(ctx, "42"); err != nil {
		t.Fatalf("PermanentDelete 失败: %v", err)
	}

	_, err := repo.Assignment.Upsert(ctx, sampleAssignment("42"))
	if !errors.Is(err, repository.ErrAssignmentTombstoned) {
		t.Fatalf("期望 ErrAssignmentTombstoned，得到: %v", err)
	}

	_, err = repo.Assignment.GetByID(ctx, "42")
	if !errors.Is(err, repository.ErrAssignmentNotFound) {
		t.Errorf("记录不应复活，得到: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Soft Delete / Restore / Permanent Delete
// ═══════════════════════════════════════════════════════════

func TestAssignment_SoftDeleteAndRestore(t *testing.T) {
	cleanTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if _, err := repo.Assignment.Upsert(ctx, sampleAssignment("a-4")); err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}

	if err := repo.Assignment.SoftDelete(ctx, "a-4"); err != nil {
		t.Fatalf("SoftDelete 失败: %v", err)
	}

	got, err := repo.Assignment.GetByID(ctx, "a-4")
	if err != nil {
		t.Fatalf("软删除后记录应仍可按 ID 查到: %v", err)
	}
	if !got.Deleted || got.DeletedAt == nil {
		t.Error("软删除应设置 deleted 与 deleted_at")
	}

	active, _ := repo.Assignment.List(ctx, false)
	if len(active) != 0 {
		t.Errorf("活动列表应为空，得到 %d 条", len(active))
	}

	exists, err := repo.Tombstone.Exists(ctx, "a-4")
	if err != nil || !exists {
		t.Fatalf("软删除后应有墓碑: exists=%v err=%v", exists, err)
	}

	// 恢复
	if err := repo.Assignment.Restore(ctx, "a-4"); err != nil {
		t.Fatalf("Restore 失败: %v", err)
	}
	got, _ = repo.Assignment.GetByID(ctx, "a-4")
	if got.Deleted || got.DeletedAt != nil {
		t.Error("恢复后删除标记应清除")
	}
	exists, _ = repo.Tombstone.Exists(ctx, "a-4")
	if exists {
		t.Error("恢复后墓碑应移除")
	}
}

func TestAssignment_RestoreMissing(t *testing.T) {
	cleanTables(t)
	repo := repository.NewRepository(testDB)

	err := repo.Assignment.Restore(context.Background(), "ghost")
	if !errors.Is(err, repository.ErrAssignmentNotFound) {
		t.Errorf("期望 ErrAssignmentNotFound，得到: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Bulk Update
// ═══════════════════════════════════════════════════════════

func TestAssignment_BulkUpdateFields(t *testing.T) {
	cleanTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	for _, id := range []string{"b-1", "b-2", "b-3"} {
		if _, err := repo.Assignment.Upsert(ctx, sampleAssignment(id)); err != nil {
			t.Fatalf("Upsert %s 失败: %v", id, err)
		}
	}

	status := model.StatusCompleted
	n, err := repo.Assignment.BulkUpdateFields(ctx, []string{"b-1", "b-3", "missing"},
		&model.AssignmentPatch{Status: &status})
	if err != nil {
		t.Fatalf("BulkUpdateFields 失败: %v", err)
	}
	if n != 2 {
		t.Errorf("期望影响 2 行，得到 %d", n)
	}

	got, _ := repo.Assignment.GetByID(ctx, "b-2")
	if got.Status == model.StatusCompleted {
		t.Error("未选中的记录不应被更新")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Course Mapping
// ═══════════════════════════════════════════════════════════

func TestCourseMapping_SavePreservesEnabled(t *testing.T) {
	cleanTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if err := repo.Course.SaveMapping(ctx, "CS 0445", "CS 445 Reminders"); err != nil {
		t.Fatalf("SaveMapping 失败: %v", err)
	}
	if err := repo.Course.SetEnabled(ctx, "CS 0445", false); err != nil {
		t.Fatalf("SetEnabled 失败: %v", err)
	}

	// 重新保存映射：列表名更新，停用状态不应被顶掉
	if err := repo.Course.SaveMapping(ctx, "CS 0445", "Data Structures"); err != nil {
		t.Fatalf("再次 SaveMapping 失败: %v", err)
	}

	m, err := repo.Course.GetMapping(ctx, "CS 0445")
	if err != nil {
		t.Fatalf("GetMapping 失败: %v", err)
	}
	if m.ReminderList != "Data Structures" {
		t.Errorf("提醒列表应更新，得到 %q", m.ReminderList)
	}
	if m.Enabled {
		t.Error("停用状态应保留")
	}

	enabled, _ := repo.Course.ListEnabled(ctx)
	if len(enabled) != 0 {
		t.Errorf("启用列表应为空，得到 %d 条", len(enabled))
	}
}

func TestCourseMapping_SetEnabledCreatesPlaceholder(t *testing.T) {
	cleanTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if err := repo.Course.SetEnabled(ctx, "MATH 0220", false); err != nil {
		t.Fatalf("SetEnabled 失败: %v", err)
	}
	m, err := repo.Course.GetMapping(ctx, "MATH 0220")
	if err != nil {
		t.Fatalf("占位映射应已创建: %v", err)
	}
	if m.Enabled {
		t.Error("占位映射应处于停用状态")
	}
}

func TestCourseMapping_DeleteMissing(t *testing.T) {
	cleanTables(t)
	repo := repository.NewRepository(testDB)

	err := repo.Course.Delete(context.Background(), "ghost")
	if !errors.Is(err, repository.ErrCourseMappingNotFound) {
		t.Errorf("期望 ErrCourseMappingNotFound，得到: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Settings
// ═══════════════════════════════════════════════════════════

func TestSetting_GetMissingReturnsEmpty(t *testing.T) {
	cleanTables(t)
	repo := repository.NewRepository(testDB)

	v, err := repo.Setting.Get(context.Background(), model.SettingCollegeName)
	if err != nil {
		t.Fatalf("缺失的键不应报错: %v", err)
	}
	if v != "" {
		t.Errorf("期望空串，得到 %q", v)
	}
}

func TestSetting_SetUpserts(t *testing.T) {
	cleanTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if err := repo.Setting.Set(ctx, model.SettingAutoSyncReminder, "1"); err != nil {
		t.Fatalf("Set 失败: %v", err)
	}
	if err := repo.Setting.Set(ctx, model.SettingAutoSyncReminder, "0"); err != nil {
		t.Fatalf("覆盖 Set 失败: %v", err)
	}

	v, _ := repo.Setting.Get(ctx, model.SettingAutoSyncReminder)
	if v != "0" {
		t.Errorf("期望 \"0\"，得到 %q", v)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Insights Cache
// ═══════════════════════════════════════════════════════════

func TestInsight_SaveKeepsOnlyLatest(t *testing.T) {
	cleanTables(t)
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	first := &model.AIInsight{
		InsightsJSON: `{"summary":"old"}`,
		GeneratedAt:  time.Now().Add(-48 * time.Hour),
	}
	if err := repo.Insight.Save(ctx, first); err != nil {
		t.Fatalf("首次 Save 失败: %v", err)
	}

	second := &model.AIInsight{
		InsightsJSON: `{"summary":"new"}`,
		GeneratedAt:  time.Now(),
	}
	if err := repo.Insight.Save(ctx, second); err != nil {
		t.Fatalf("再次 Save 失败: %v", err)
	}

	got, err := repo.Insight.GetLatest(ctx)
	if err != nil {
		t.Fatalf("GetLatest 失败: %v", err)
	}
	if got.InsightsJSON != `{"summary":"new"}` {
		t.Errorf("应只剩最新一条，得到 %q", got.InsightsJSON)
	}

	var count int64
	testDB.Model(&model.AIInsight{}).Count(&count)
	if count != 1 {
		t.Errorf("表中应只有 1 条，得到 %d", count)
	}
}

func TestInsight_GetLatestMissing(t *testing.T) {
	cleanTables(t)
	repo := repository.NewRepository(testDB)

	_, err := repo.Insight.GetLatest(context.Background())
	if !errors.Is(err, repository.ErrInsightNotFound) {
		t.Errorf("期望 ErrInsightNotFound，得到: %v", err)
	}
}
