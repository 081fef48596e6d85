package service

import (
	"context"
	"sort"
	"sync"

	"github.com/ppratick/studySyncAI/internal/ai"
	"github.com/ppratick/studySyncAI/internal/canvas"
	"github.com/ppratick/studySyncAI/internal/model"
	"github.com/ppratick/studySyncAI/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// In-memory Repository Mocks
// ═══════════════════════════════════════════════════════════

type mockAssignmentRepo struct {
	mu         sync.Mutex
	items      map[string]*model.Assignment
	tombstones map[string]bool
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{
		items:      make(map[string]*model.Assignment),
		tombstones: make(map[string]bool),
	}
}

func (m *mockAssignmentRepo) Upsert(_ context.Context, incoming *model.Assignment) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tombstones[incoming.AssignmentID] {
		return false, repository.ErrAssignmentTombstoned
	}
	existing, ok := m.items[incoming.AssignmentID]
	if !ok {
		clone := *incoming
		if clone.Status == "" {
			clone.Status = model.StatusNotStarted
		}
		if clone.Priority == "" {
			clone.Priority = model.PriorityMedium
		}
		m.items[incoming.AssignmentID] = &clone
		return true, nil
	}
	existing.Title = incoming.Title
	existing.Description = incoming.Description
	existing.DueAt = incoming.DueAt
	existing.CourseName = incoming.CourseName
	existing.ReminderList = incoming.ReminderList
	if incoming.AINotes != "" {
		existing.AINotes = incoming.AINotes
	}
	return false, nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, repository.ErrAssignmentNotFound
	}
	clone := *a
	return &clone, nil
}

func (m *mockAssignmentRepo) List(_ context.Context, includeDeleted bool) ([]model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Assignment
	for _, a := range m.items {
		if !includeDeleted && a.Deleted {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt < out[j].DueAt })
	return out, nil
}

func (m *mockAssignmentRepo) ListDeleted(_ context.Context) ([]model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Assignment
	for _, a := range m.items {
		if a.Deleted {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) UpdateFields(_ context.Context, id string, patch *model.AssignmentPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return repository.ErrAssignmentNotFound
	}
	applyPatch(a, patch)
	return nil
}

func applyPatch(a *model.Assignment, p *model.AssignmentPatch) {
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Priority != nil {
		a.Priority = *p.Priority
	}
	if p.UserNotes != nil {
		a.UserNotes = *p.UserNotes
	}
	if p.ReminderList != nil {
		a.ReminderList = *p.ReminderList
	}
	if p.ReminderCreated != nil {
		a.ReminderCreated = *p.ReminderCreated
	}
	if p.AINotes != nil {
		a.AINotes = *p.AINotes
	}
	if p.TimeEstimate != nil {
		a.TimeEstimate = p.TimeEstimate
	}
	if p.SuggestedPriority != nil {
		a.SuggestedPriority = p.SuggestedPriority
	}
	if p.AIConfidence != nil {
		a.AIConfidence = p.AIConfidence
	}
	if p.AIConfidenceExplanation != nil {
		a.AIConfidenceExplanation = p.AIConfidenceExplanation
	}
}

func (m *mockAssignmentRepo) BulkUpdateFields(ctx context.Context, ids []string, patch *model.AssignmentPatch) (int64, error) {
	var n int64
	for _, id := range ids {
		if err := m.UpdateFields(ctx, id, patch); err == nil {
			n++
		}
	}
	return n, nil
}

func (m *mockAssignmentRepo) MarkReminderCreated(ctx context.Context, id string) error {
	created := true
	return m.UpdateFields(ctx, id, &model.AssignmentPatch{ReminderCreated: &created})
}

func (m *mockAssignmentRepo) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return repository.ErrAssignmentNotFound
	}
	a.Deleted = true
	m.tombstones[id] = true
	return nil
}

func (m *mockAssignmentRepo) Restore(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok || !a.Deleted {
		return repository.ErrAssignmentNotFound
	}
	a.Deleted = false
	a.DeletedAt = nil
	delete(m.tombstones, id)
	return nil
}

func (m *mockAssignmentRepo) PermanentDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return repository.ErrAssignmentNotFound
	}
	delete(m.items, id)
	m.tombstones[id] = true
	return nil
}

type mockCourseRepo struct {
	mu       sync.Mutex
	mappings map[string]*model.CourseMapping
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{mappings: make(map[string]*model.CourseMapping)}
}

func (m *mockCourseRepo) SaveMapping(_ context.Context, name, list string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.mappings[name]; ok {
		existing.ReminderList = list
		return nil
	}
	m.mappings[name] = &model.CourseMapping{CourseName: name, ReminderList: list, Enabled: true}
	return nil
}

func (m *mockCourseRepo) GetMapping(_ context.Context, name string) (*model.CourseMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mp, ok := m.mappings[name]
	if !ok {
		return nil, repository.ErrCourseMappingNotFound
	}
	clone := *mp
	return &clone, nil
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.CourseMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CourseMapping
	for _, mp := range m.mappings {
		out = append(out, *mp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseName < out[j].CourseName })
	return out, nil
}

func (m *mockCourseRepo) ListEnabled(ctx context.Context) ([]model.CourseMapping, error) {
	all, _ := m.List(ctx)
	var out []model.CourseMapping
	for _, mp := range all {
		if mp.Enabled {
			out = append(out, mp)
		}
	}
	return out, nil
}

func (m *mockCourseRepo) SetEnabled(_ context.Context, name string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mp, ok := m.mappings[name]; ok {
		mp.Enabled = enabled
		return nil
	}
	m.mappings[name] = &model.CourseMapping{CourseName: name, Enabled: enabled}
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.mappings[name]; !ok {
		return repository.ErrCourseMappingNotFound
	}
	delete(m.mappings, name)
	return nil
}

type mockTombstoneRepo struct {
	assignments *mockAssignmentRepo
}

func (m *mockTombstoneRepo) Exists(_ context.Context, id string) (bool, error) {
	m.assignments.mu.Lock()
	defer m.assignments.mu.Unlock()
	return m.assignments.tombstones[id], nil
}

func (m *mockTombstoneRepo) List(context.Context) ([]model.DeletedAssignment, error) {
	return nil, nil
}

type mockSettingRepo struct {
	mu     sync.Mutex
	values map[string]string
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{values: make(map[string]string)}
}

func (m *mockSettingRepo) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *mockSettingRepo) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

type mockInsightRepo struct {
	mu     sync.Mutex
	latest *model.AIInsight
}

func (m *mockInsightRepo) Save(_ context.Context, insight *model.AIInsight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *insight
	m.latest = &clone
	return nil
}

func (m *mockInsightRepo) GetLatest(context.Context) (*model.AIInsight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest == nil {
		return nil, repository.ErrInsightNotFound
	}
	clone := *m.latest
	return &clone, nil
}

// newMockRepository 组装全内存仓储聚合
func newMockRepository() (*repository.Repository, *mockAssignmentRepo, *mockCourseRepo, *mockSettingRepo, *mockInsightRepo) {
	assignments := newMockAssignmentRepo()
	courses := newMockCourseRepo()
	settings := newMockSettingRepo()
	insights := &mockInsightRepo{}
	repo := &repository.Repository{
		Assignment: assignments,
		Course:     courses,
		Tombstone:  &mockTombstoneRepo{assignments: assignments},
		Setting:    settings,
		Insight:    insights,
	}
	return repo, assignments, courses, settings, insights
}

// ═══════════════════════════════════════════════════════════
// Source / Enhancer / Sink Mocks
// ═══════════════════════════════════════════════════════════

type mockSource struct {
	configured  bool
	courses     []canvas.Course
	listErr     error
	items       map[int64][]canvas.Item
	failCourses map[int64]error
}

func (m *mockSource) Configured() bool { return m.configured }

func (m *mockSource) ListFavoriteCourses(context.Context) ([]canvas.Course, error) {
	return m.courses, m.listErr
}

func (m *mockSource) FetchCourseItems(_ context.Context, courseID int64) ([]canvas.Item, error) {
	if err, ok := m.failCourses[courseID]; ok {
		return nil, err
	}
	return m.items[courseID], nil
}

type mockEnhancer struct {
	mu        sync.Mutex
	available bool
	result    *ai.Result
	err       error
	insights  string
	enhanced  []string
	colleges  []string
}

func (m *mockEnhancer) Available(context.Context) bool { return m.available }

func (m *mockEnhancer) EnhanceAssignment(_ context.Context, title, _, _, _, college string) (*ai.Result, error) {
	m.mu.Lock()
	m.enhanced = append(m.enhanced, title)
	m.colleges = append(m.colleges, college)
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &ai.Result{Notes: "Notes for " + title}, nil
}

func (m *mockEnhancer) GenerateInsights(context.Context, string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.insights, nil
}

type sinkCall struct {
	title, due, list, notes string
}

type mockSink struct {
	mu        sync.Mutex
	upserts   []sinkCall
	removes   []sinkCall
	upsertErr error
}

func (m *mockSink) Upsert(_ context.Context, title, due, list, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts = append(m.upserts, sinkCall{title: title, due: due, list: list, notes: notes})
	return nil
}

func (m *mockSink) Remove(_ context.Context, title, list string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removes = append(m.removes, sinkCall{title: title, list: list})
	return nil
}
