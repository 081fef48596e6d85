package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/ppratick/studySyncAI/internal/ai"
	"github.com/ppratick/studySyncAI/internal/dto"
	"github.com/ppratick/studySyncAI/internal/model"
	"github.com/ppratick/studySyncAI/internal/repository"
)

func newAssignmentService(t *testing.T) (AssignmentService, *mockAssignmentRepo, *mockEnhancer, *mockSink) {
	t.Helper()
	repo, assignments, _, _, _ := newMockRepository()
	enhancer := &mockEnhancer{available: true}
	sink := &mockSink{}
	svc := NewAssignmentService(testSyncConfig(), repo, enhancer, sink, zap.NewNop())
	return svc, assignments, enhancer, sink
}

func seedAssignment(t *testing.T, assignments *mockAssignmentRepo, id string) {
	t.Helper()
	_, err := assignments.Upsert(context.Background(), &model.Assignment{
		AssignmentID: id,
		Title:        "Project 1",
		DueAt:        "2030-10-01T04:59:59Z",
		CourseName:   "CS 0445",
		ReminderList: "CS 445 Reminders",
	})
	if err != nil {
		t.Fatalf("预置作业失败: %v", err)
	}
}

func TestAssignmentUpdate_ValidatesEnums(t *testing.T) {
	svc, assignments, _, _ := newAssignmentService(t)
	seedAssignment(t, assignments, "1")
	ctx := context.Background()

	bad := "Done"
	err := svc.Update(ctx, "1", &dto.UpdateAssignmentRequest{Status: &bad})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("期望 ErrInvalidStatus，得到: %v", err)
	}

	badPrio := "Urgent"
	err = svc.Update(ctx, "1", &dto.UpdateAssignmentRequest{Priority: &badPrio})
	if !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("期望 ErrInvalidPriority，得到: %v", err)
	}

	good := model.StatusCompleted
	if err := svc.Update(ctx, "1", &dto.UpdateAssignmentRequest{Status: &good}); err != nil {
		t.Fatalf("合法更新失败: %v", err)
	}
	got, _ := assignments.GetByID(ctx, "1")
	if got.Status != model.StatusCompleted {
		t.Errorf("状态未更新: %q", got.Status)
	}
}

func TestAssignmentUpdate_NotFound(t *testing.T) {
	svc, _, _, _ := newAssignmentService(t)

	notes := "x"
	err := svc.Update(context.Background(), "ghost", &dto.UpdateAssignmentRequest{UserNotes: &notes})
	if !errors.Is(err, repository.ErrAssignmentNotFound) {
		t.Fatalf("期望 ErrAssignmentNotFound，得到: %v", err)
	}
}

func TestAssignmentBulkUpdate(t *testing.T) {
	svc, assignments, _, _ := newAssignmentService(t)
	seedAssignment(t, assignments, "1")
	seedAssignment(t, assignments, "2")

	req := &dto.BulkUpdateAssignmentsRequest{AssignmentIDs: []string{"1", "2", "ghost"}}
	status := model.StatusInProgress
	req.Fields.Status = &status

	n, err := svc.BulkUpdate(context.Background(), req)
	if err != nil {
		t.Fatalf("BulkUpdate 失败: %v", err)
	}
	if n != 2 {
		t.Errorf("影响行数 = %d，期望 2", n)
	}
}

func TestAssignmentCreate_InvalidDue(t *testing.T) {
	svc, _, _, _ := newAssignmentService(t)

	_, err := svc.Create(context.Background(), &dto.CreateAssignmentRequest{
		AssignmentID: "m-1", Title: "Custom", DueAt: "tomorrow",
		CourseName: "CS 0445", ReminderList: "CS",
	})
	if !errors.Is(err, ErrInvalidDueAt) {
		t.Fatalf("期望 ErrInvalidDueAt，得到: %v", err)
	}
}

func TestAssignmentCreate_AIFailureTolerated(t *testing.T) {
	svc, assignments, enhancer, _ := newAssignmentService(t)
	enhancer.err = errors.New("backend exploded")

	got, err := svc.Create(context.Background(), &dto.CreateAssignmentRequest{
		AssignmentID: "m-2", Title: "Custom", DueAt: "2030-12-01T04:59:59Z",
		CourseName: "CS 0445", ReminderList: "CS", UseAI: true,
	})
	if err != nil {
		t.Fatalf("AI 失败不应导致创建失败: %v", err)
	}
	if got.AssignmentID != "m-2" {
		t.Errorf("响应错误: %+v", got)
	}
	if _, err := assignments.GetByID(context.Background(), "m-2"); err != nil {
		t.Error("记录应已创建")
	}
}

func TestAssignmentAddReminder(t *testing.T) {
	svc, assignments, _, sink := newAssignmentService(t)
	seedAssignment(t, assignments, "1")
	ctx := context.Background()

	if err := svc.AddReminder(ctx, "1"); err != nil {
		t.Fatalf("AddReminder 失败: %v", err)
	}
	if len(sink.upserts) != 1 {
		t.Fatalf("期望 1 次提醒写入，得到 %d", len(sink.upserts))
	}
	call := sink.upserts[0]
	if call.list != "CS 445 Reminders" {
		t.Errorf("提醒列表错误: %q", call.list)
	}
	// 2030-10-01 04:59:59 UTC = 东部夏令时 2030-10-01 00:59:59
	if call.due != "Tuesday, October 01, 2030 at 12:59:59 AM" {
		t.Errorf("提醒截止时间错误: %q", call.due)
	}

	got, _ := assignments.GetByID(ctx, "1")
	if !got.ReminderCreated {
		t.Error("提醒标记应已写入")
	}
}

func TestAssignmentAddReminder_SinkFailureKeepsFlag(t *testing.T) {
	svc, assignments, _, sink := newAssignmentService(t)
	seedAssignment(t, assignments, "1")
	sink.upsertErr = errors.New("osascript 执行失败")

	if err := svc.AddReminder(context.Background(), "1"); err == nil {
		t.Fatal("出口失败应返回错误")
	}
	got, _ := assignments.GetByID(context.Background(), "1")
	if got.ReminderCreated {
		t.Error("写入失败时不应标记已建提醒")
	}
}

func TestAssignmentRemoveReminder(t *testing.T) {
	svc, assignments, _, sink := newAssignmentService(t)
	seedAssignment(t, assignments, "1")
	ctx := context.Background()
	assignments.MarkReminderCreated(ctx, "1")

	if err := svc.RemoveReminder(ctx, "1"); err != nil {
		t.Fatalf("RemoveReminder 失败: %v", err)
	}
	if len(sink.removes) != 1 {
		t.Fatalf("期望 1 次提醒删除，得到 %d", len(sink.removes))
	}
	got, _ := assignments.GetByID(ctx, "1")
	if got.ReminderCreated {
		t.Error("提醒标记应已清除")
	}
}

func TestGenerateAINotes_PersistsFields(t *testing.T) {
	svc, assignments, enhancer, _ := newAssignmentService(t)
	seedAssignment(t, assignments, "1")
	est := 2.5
	prio := model.PriorityHigh
	conf := 4
	enhancer.result = &ai.Result{
		Notes:             "Plan two sessions.",
		TimeEstimate:      &est,
		SuggestedPriority: &prio,
		Confidence:        &conf,
	}

	got, err := svc.GenerateAINotes(context.Background(), "1")
	if err != nil {
		t.Fatalf("GenerateAINotes 失败: %v", err)
	}
	if got.AINotes != "Plan two sessions." {
		t.Errorf("笔记错误: %q", got.AINotes)
	}
	if got.TimeEstimate == nil || *got.TimeEstimate != 2.5 {
		t.Errorf("时间估算错误: %v", got.TimeEstimate)
	}
	if got.SuggestedPriority == nil || *got.SuggestedPriority != model.PriorityHigh {
		t.Errorf("建议优先级错误: %v", got.SuggestedPriority)
	}
	if got.AIConfidence == nil || *got.AIConfidence != 4 {
		t.Errorf("置信度错误: %v", got.AIConfidence)
	}
}

func TestGenerateAINotes_AlreadyExists(t *testing.T) {
	svc, assignments, enhancer, _ := newAssignmentService(t)
	seedAssignment(t, assignments, "1")
	ctx := context.Background()

	notes := "already enriched"
	assignments.UpdateFields(ctx, "1", &model.AssignmentPatch{AINotes: &notes})

	_, err := svc.GenerateAINotes(ctx, "1")
	if !errors.Is(err, ErrAINotesExist) {
		t.Fatalf("期望 ErrAINotesExist，得到: %v", err)
	}
	if len(enhancer.enhanced) != 0 {
		t.Error("已有笔记时不应调用生成")
	}
	got, _ := assignments.GetByID(ctx, "1")
	if got.AINotes != "already enriched" {
		t.Errorf("既有笔记不应被覆盖: %q", got.AINotes)
	}
}

func TestGenerateAINotes_Unavailable(t *testing.T) {
	svc, assignments, enhancer, _ := newAssignmentService(t)
	seedAssignment(t, assignments, "1")
	enhancer.available = false

	_, err := svc.GenerateAINotes(context.Background(), "1")
	if !errors.Is(err, ErrAIUnavailable) {
		t.Fatalf("期望 ErrAIUnavailable，得到: %v", err)
	}
}

func TestAssignmentListDeleted(t *testing.T) {
	svc, assignments, _, _ := newAssignmentService(t)
	seedAssignment(t, assignments, "1")
	seedAssignment(t, assignments, "2")
	ctx := context.Background()

	if err := svc.Delete(ctx, "1"); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}

	active, _ := svc.List(ctx)
	if len(active) != 1 || active[0].AssignmentID != "2" {
		t.Errorf("活动列表错误: %+v", active)
	}
	deleted, _ := svc.ListDeleted(ctx)
	if len(deleted) != 1 || deleted[0].AssignmentID != "1" {
		t.Errorf("删除列表错误: %+v", deleted)
	}
}
