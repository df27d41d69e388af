package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"notes-manager/internal/converter"
)

// apiClient простой HTTP клиент для REST API сервера заметок
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// apiError тело ошибки, которое возвращает сервер для не-2xx статусов
type apiError struct {
	Message string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// do выполняет запрос и декодирует ответ в out (если out != nil)
func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody apiError
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err != nil {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return &errBody
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

func (c *apiClient) createNote(ctx context.Context, title, content string) (converter.NoteResponse, error) {
	var note converter.NoteResponse
	body := map[string]string{"title": title, "content": content}
	err := c.do(ctx, http.MethodPost, "/notes", body, &note)
	return note, err
}

func (c *apiClient) getNote(ctx context.Context, id string) (converter.NoteResponse, error) {
	var note converter.NoteResponse
	err := c.do(ctx, http.MethodGet, "/notes/"+id, nil, &note)
	return note, err
}

func (c *apiClient) listNotes(ctx context.Context) ([]converter.NoteResponse, error) {
	var notes []converter.NoteResponse
	err := c.do(ctx, http.MethodGet, "/notes", nil, &notes)
	return notes, err
}

// notesModifiedSince оставляет заметки, измененные не раньше cutoff
func notesModifiedSince(notes []converter.NoteResponse, cutoff time.Time) ([]converter.NoteResponse, error) {
	filtered := make([]converter.NoteResponse, 0, len(notes))
	for _, n := range notes {
		ts, err := converter.ParseLastModified(n.LastModified)
		if err != nil {
			return nil, fmt.Errorf("parse lastModified of note %s: %w", n.ID, err)
		}
		if !ts.Before(cutoff) {
			filtered = append(filtered, n)
		}
	}
	return filtered, nil
}

// updateNote отправляет только переданные поля (nil - поле не изменяется)
func (c *apiClient) updateNote(ctx context.Context, id string, title, content *string) (converter.NoteResponse, error) {
	var note converter.NoteResponse
	body := map[string]string{}
	if title != nil {
		body["title"] = *title
	}
	if content != nil {
		body["content"] = *content
	}
	err := c.do(ctx, http.MethodPut, "/notes/"+id, body, &note)
	return note, err
}

func (c *apiClient) deleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notes/"+id, nil, nil)
}

// logEntry запись журнала действий в JSON представлении
type logEntry struct {
	ID        string            `json:"id"`
	Action    string            `json:"action"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

func (c *apiClient) listLogs(ctx context.Context, action string) ([]logEntry, error) {
	path := "/logs"
	if action != "" {
		path += "?action=" + action
	}
	var entries []logEntry
	err := c.do(ctx, http.MethodGet, path, nil, &entries)
	return entries, err
}

func (c *apiClient) reset(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/reset", nil, nil)
}
