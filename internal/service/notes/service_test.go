package notes

import (
	"context"
	"errors"
	"testing"
	"time"

	"notes-manager/internal/audit"
	"notes-manager/internal/model"
	"notes-manager/internal/repository"
	"notes-manager/internal/repository/memory"
	svc "notes-manager/internal/service"

	"github.com/go-playground/validator/v10"
)

// mockRepository - простой mock репозитория для тестирования
type mockRepository struct {
	notes    map[string]model.Note
	order    []string
	saveErr  error
	getErr   error
	listErr  error
	delErr   error
	clearErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		notes: make(map[string]model.Note),
	}
}

func (m *mockRepository) Save(ctx context.Context, note model.Note) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, exists := m.notes[note.ID]; !exists {
		m.order = append(m.order, note.ID)
	}
	m.notes[note.ID] = note
	return nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (model.Note, error) {
	if m.getErr != nil {
		return model.Note{}, m.getErr
	}
	note, exists := m.notes[id]
	if !exists {
		return model.Note{}, memory.ErrNoteNotFound
	}
	return note, nil
}

func (m *mockRepository) Has(ctx context.Context, id string) bool {
	_, exists := m.notes[id]
	return exists
}

func (m *mockRepository) List(ctx context.Context) ([]model.Note, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	notes := make([]model.Note, 0, len(m.notes))
	for _, id := range m.order {
		if note, exists := m.notes[id]; exists {
			notes = append(notes, note)
		}
	}
	return notes, nil
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	if m.delErr != nil {
		return m.delErr
	}
	if _, exists := m.notes[id]; !exists {
		return memory.ErrNoteNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *mockRepository) Clear(ctx context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.notes = make(map[string]model.Note)
	m.order = nil
	return nil
}

// Проверяем, что mockRepository реализует интерфейс
var _ repository.NoteRepository = (*mockRepository)(nil)

func newTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v, err := model.NewValidator()
	if err != nil {
		t.Fatalf("Failed to build validator: %v", err)
	}
	if err := audit.RegisterWithValidator(v); err != nil {
		t.Fatalf("Failed to register audit validations: %v", err)
	}
	return v
}

// newTestService собирает сервис с mock репозиторием и реальным журналом
func newTestService(t *testing.T, opts ...Option) (svc.NoteService, *mockRepository, audit.Recorder) {
	t.Helper()
	v := newTestValidator(t)
	mockRepo := newMockRepository()
	auditLog := audit.NewLog(v)
	service := NewNoteService(mockRepo, auditLog, NewEventService(), v, opts...)
	return service, mockRepo, auditLog
}

// testClock возвращает источник времени, продвигающийся на миллисекунду при каждом вызове
func testClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Millisecond)
		return current
	}
}

func TestNoteService_Create_Success(t *testing.T) {
	ctx := context.Background()
	service, mockRepo, auditLog := newTestService(t)

	before := time.Now().UTC()
	note, err := service.Create(ctx, model.CreateNoteInput{
		Title:   "Test Note",
		Content: "Test Content",
	})
	after := time.Now().UTC()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if note.Title != "Test Note" {
		t.Errorf("Expected title %q, got %q", "Test Note", note.Title)
	}

	if note.Content != "Test Content" {
		t.Errorf("Expected content %q, got %q", "Test Content", note.Content)
	}

	if note.ID == "" {
		t.Error("Expected note to have ID")
	}

	// Временная метка должна попадать в интервал выполнения (с учетом усечения до мс)
	if note.LastModified.Before(before.Truncate(time.Millisecond)) || note.LastModified.After(after) {
		t.Errorf("Expected LastModified within execution bounds, got %v", note.LastModified)
	}

	if !mockRepo.Has(ctx, note.ID) {
		t.Error("Expected note to be stored in repository")
	}

	// Ровно одна запись created в журнале
	entries := auditLog.ListByAction(audit.ActionCreated)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 created log entry, got %d", len(entries))
	}
	if entries[0].Details["id"] != note.ID {
		t.Errorf("Expected log entry id %q, got %q", note.ID, entries[0].Details["id"])
	}
	if entries[0].Details["title"] != note.Title {
		t.Errorf("Expected log entry title %q, got %q", note.Title, entries[0].Details["title"])
	}
	// Содержание заметки не должно попадать в журнал
	if _, ok := entries[0].Details["content"]; ok {
		t.Error("Log entry must not contain note content")
	}
}

func TestNoteService_Create_TrimsFields(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	note, err := service.Create(ctx, model.CreateNoteInput{
		Title:   "  Test Note  ",
		Content: "  Test Content  ",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if note.Title != "Test Note" {
		t.Errorf("Expected trimmed title, got: %q", note.Title)
	}
	if note.Content != "Test Content" {
		t.Errorf("Expected trimmed content, got: %q", note.Content)
	}
}

func TestNoteService_Create_EmptyTitle(t *testing.T) {
	ctx := context.Background()
	service, mockRepo, auditLog := newTestService(t)

	note, err := service.Create(ctx, model.CreateNoteInput{Title: "", Content: "x"})

	if err == nil {
		t.Fatal("Expected error for empty title")
	}

	var svcErr *model.Error
	if !errors.As(err, &svcErr) || svcErr.Code != model.CodeValidation {
		t.Errorf("Expected VALIDATION_ERROR, got: %v", err)
	}

	if !note.IsEmpty() {
		t.Error("Expected empty note on error")
	}

	// Ни записи в хранилище, ни записи в журнале
	if len(mockRepo.notes) != 0 {
		t.Error("Expected no note to be stored on validation error")
	}
	if len(auditLog.List()) != 0 {
		t.Error("Expected no log entry on validation error")
	}
}

func TestNoteService_Create_WhitespaceContent(t *testing.T) {
	ctx := context.Background()
	service, mockRepo, auditLog := newTestService(t)

	_, err := service.Create(ctx, model.CreateNoteInput{Title: "x", Content: "   "})

	if err == nil {
		t.Fatal("Expected error for whitespace-only content")
	}

	var svcErr *model.Error
	if !errors.As(err, &svcErr) || svcErr.Code != model.CodeValidation {
		t.Errorf("Expected VALIDATION_ERROR, got: %v", err)
	}

	if len(mockRepo.notes) != 0 || len(auditLog.List()) != 0 {
		t.Error("Expected no side effects on validation error")
	}
}

func TestNoteService_Create_UniqueIDs(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		note, err := service.Create(ctx, model.CreateNoteInput{Title: "t", Content: "c"})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if seen[note.ID] {
			t.Fatalf("Duplicate note ID generated: %s", note.ID)
		}
		seen[note.ID] = true
	}
}

func TestNoteService_Get_Success(t *testing.T) {
	ctx := context.Background()
	service, mockRepo, auditLog := newTestService(t)

	testNote := model.Note{
		ID:           "test-id",
		Title:        "Test Note",
		Content:      "Test Content",
		CreatedAt:    time.Now(),
		LastModified: time.Now(),
	}
	mockRepo.notes["test-id"] = testNote

	note, err := service.Get(ctx, "test-id")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if note.ID != "test-id" {
		t.Errorf("Expected ID %q, got %q", "test-id", note.ID)
	}

	// Get не пишет в журнал в минимальном пути
	if len(auditLog.List()) != 0 {
		t.Error("Expected Get to produce no log entries")
	}
}

func TestNoteService_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	note, err := service.Get(ctx, "non-existent-id")

	if err == nil {
		t.Fatal("Expected error for non-existent note")
	}

	var svcErr *model.Error
	if !errors.As(err, &svcErr) || svcErr.Code != model.CodeNotFound {
		t.Errorf("Expected NOT_FOUND, got: %v", err)
	}
	if svcErr.Details["id"] != "non-existent-id" {
		t.Errorf("Expected missing id in details, got: %v", svcErr.Details)
	}

	if !note.IsEmpty() {
		t.Error("Expected empty note on error")
	}
}

func TestNoteService_List_Empty(t *testing.T) {
	ctx := context.Background()
	service, _, auditLog := newTestService(t)

	notes, err := service.List(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(notes) != 0 {
		t.Errorf("Expected 0 notes, got %d", len(notes))
	}

	// Просмотр списка фиксируется даже для пустого хранилища
	entries := auditLog.ListByAction(audit.ActionListViewed)
	if len(entries) != 1 {
		t.Errorf("Expected 1 list-viewed entry, got %d", len(entries))
	}
	if entries[0].Details != nil {
		t.Error("Expected list-viewed entry without per-note details")
	}
}

func TestNoteService_List_ReturnsAllNotes(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	for i := 0; i < 5; i++ {
		if _, err := service.Create(ctx, model.CreateNoteInput{Title: "t", Content: "c"}); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	notes, err := service.List(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(notes) != 5 {
		t.Errorf("Expected 5 notes, got %d", len(notes))
	}
}

func TestNoteService_Update_TitleOnly(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	service, mockRepo, auditLog := newTestService(t, WithClock(testClock(start)))

	prior := model.Note{
		ID:           "test-id",
		Title:        "Original Title",
		Content:      "Original Content",
		CreatedAt:    start,
		LastModified: start,
	}
	mockRepo.notes["test-id"] = prior
	mockRepo.order = append(mockRepo.order, "test-id")

	newTitle := "New"
	updated, err := service.Update(ctx, "test-id", model.UpdateNoteInput{Title: &newTitle})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if updated.Title != "New" {
		t.Errorf("Expected title %q, got %q", "New", updated.Title)
	}

	// Content не передан - остается прежним
	if updated.Content != "Original Content" {
		t.Errorf("Expected content to remain unchanged, got %q", updated.Content)
	}

	if !updated.LastModified.After(prior.LastModified) {
		t.Errorf("Expected LastModified to advance: prior=%v updated=%v",
			prior.LastModified, updated.LastModified)
	}

	entries := auditLog.ListByAction(audit.ActionUpdated)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 updated entry, got %d", len(entries))
	}
	if entries[0].Details["updated_fields"] != "title" {
		t.Errorf("Expected updated_fields=title, got %q", entries[0].Details["updated_fields"])
	}
}

func TestNoteService_Update_WhitespaceTitle(t *testing.T) {
	ctx := context.Background()
	service, mockRepo, auditLog := newTestService(t)

	mockRepo.notes["test-id"] = model.Note{ID: "test-id", Title: "Original", Content: "Content"}

	blank := "   "
	_, err := service.Update(ctx, "test-id", model.UpdateNoteInput{Title: &blank})

	if err == nil {
		t.Fatal("Expected error for whitespace-only title")
	}

	var svcErr *model.Error
	if !errors.As(err, &svcErr) || svcErr.Code != model.CodeValidation {
		t.Errorf("Expected VALIDATION_ERROR, got: %v", err)
	}

	// Заметка не изменилась, журнал пуст
	if mockRepo.notes["test-id"].Title != "Original" {
		t.Error("Expected note to remain unchanged")
	}
	if len(auditLog.List()) != 0 {
		t.Error("Expected no log entry on validation error")
	}
}

func TestNoteService_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	service, _, auditLog := newTestService(t)

	title := "title"
	note, err := service.Update(ctx, "missing", model.UpdateNoteInput{Title: &title})

	if err == nil {
		t.Fatal("Expected error for non-existent note")
	}

	var svcErr *model.Error
	if !errors.As(err, &svcErr) || svcErr.Code != model.CodeNotFound {
		t.Errorf("Expected NOT_FOUND, got: %v", err)
	}

	if !note.IsEmpty() {
		t.Error("Expected empty note on error")
	}
	if len(auditLog.List()) != 0 {
		t.Error("Expected no log entry for failed update")
	}
}

func TestNoteService_Delete_Success(t *testing.T) {
	ctx := context.Background()
	service, mockRepo, auditLog := newTestService(t)

	mockRepo.notes["test-id"] = model.Note{ID: "test-id", Title: "Test", Content: "Content"}

	if err := service.Delete(ctx, "test-id"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Последующий Get должен вернуть NOT_FOUND
	_, err := service.Get(ctx, "test-id")
	var svcErr *model.Error
	if !errors.As(err, &svcErr) || svcErr.Code != model.CodeNotFound {
		t.Errorf("Expected NOT_FOUND after delete, got: %v", err)
	}

	entries := auditLog.ListByAction(audit.ActionDeleted)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 deleted entry, got %d", len(entries))
	}
	if entries[0].Details["id"] != "test-id" {
		t.Errorf("Expected deleted entry id %q, got %q", "test-id", entries[0].Details["id"])
	}
}

func TestNoteService_Delete_NotFound(t *testing.T) {
	ctx := context.Background()
	service, _, auditLog := newTestService(t)

	err := service.Delete(ctx, "missing")

	if err == nil {
		t.Fatal("Expected error for non-existent note")
	}

	var svcErr *model.Error
	if !errors.As(err, &svcErr) || svcErr.Code != model.CodeNotFound {
		t.Errorf("Expected NOT_FOUND, got: %v", err)
	}

	if len(auditLog.List()) != 0 {
		t.Error("Expected no log entry for failed delete")
	}
}

func TestNoteService_Reset(t *testing.T) {
	ctx := context.Background()
	service, mockRepo, auditLog := newTestService(t)

	if _, err := service.Create(ctx, model.CreateNoteInput{Title: "t", Content: "c"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if err := service.Reset(ctx); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(mockRepo.notes) != 0 {
		t.Error("Expected store to be empty after reset")
	}

	// После сброса в журнале остается единственная запись db-reset
	entries := auditLog.List()
	if len(entries) != 1 || entries[0].Action != audit.ActionDBReset {
		t.Errorf("Expected single db-reset entry after reset, got: %v", entries)
	}
}

func TestNoteService_InternalErrorWrapping(t *testing.T) {
	ctx := context.Background()
	service, mockRepo, _ := newTestService(t)

	mockRepo.listErr = errors.New("storage exploded")

	_, err := service.List(ctx)
	if err == nil {
		t.Fatal("Expected error from repository")
	}

	var svcErr *model.Error
	if !errors.As(err, &svcErr) || svcErr.Code != model.CodeInternal {
		t.Errorf("Expected INTERNAL_ERROR, got: %v", err)
	}

	// Исходное сообщение сохраняется в цепочке ошибок
	if !errors.Is(err, mockRepo.listErr) {
		t.Error("Expected original error to be preserved in chain")
	}
}

func TestNoteService_KnownErrorsNotDoubleWrapped(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	_, err := service.Get(ctx, "missing")

	var svcErr *model.Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("Expected typed error, got: %v", err)
	}
	if svcErr.Code != model.CodeNotFound {
		t.Errorf("Expected NOT_FOUND to pass through unwrapped, got code %s", svcErr.Code)
	}
}

func TestNoteService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	// create → read → update → read → delete → list
	created, err := service.Create(ctx, model.CreateNoteInput{
		Title:   "Shopping",
		Content: "Milk, eggs",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	fetched, err := service.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched.Title != "Shopping" || fetched.Content != "Milk, eggs" {
		t.Errorf("Unexpected note after create: %+v", fetched)
	}

	newContent := "Milk, eggs, bread"
	updated, err := service.Update(ctx, created.ID, model.UpdateNoteInput{Content: &newContent})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ID != created.ID || updated.Title != "Shopping" {
		t.Errorf("Expected same id/title after update, got: %+v", updated)
	}
	if updated.Content != "Milk, eggs, bread" {
		t.Errorf("Expected updated content, got: %q", updated.Content)
	}
	if updated.LastModified.Before(created.LastModified) {
		t.Error("Expected newer LastModified after update")
	}

	fetched, err = service.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get after update failed: %v", err)
	}
	if fetched.Content != "Milk, eggs, bread" {
		t.Errorf("Expected persisted content, got: %q", fetched.Content)
	}

	if err := service.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	notes, err := service.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, n := range notes {
		if n.ID == created.ID {
			t.Error("Expected deleted note to be absent from list")
		}
	}
}

func TestNoteService_Create_PublishesEvent(t *testing.T) {
	ctx := context.Background()
	v := newTestValidator(t)
	events := NewEventService()
	service := NewNoteService(newMockRepository(), audit.NewLog(v), events, v)

	ch := events.Subscribe()
	defer events.Unsubscribe(ch)

	note, err := service.Create(ctx, model.CreateNoteInput{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	select {
	case event := <-ch:
		if event.Type != EventCreated {
			t.Errorf("Expected created event, got %s", event.Type)
		}
		if event.Note.ID != note.ID {
			t.Errorf("Expected event for note %s, got %s", note.ID, event.Note.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected event to be published")
	}
}
