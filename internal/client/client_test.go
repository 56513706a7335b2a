package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"taskManager/internal/client"
	"taskManager/internal/handlers/dto"
	"taskManager/internal/models/task"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, h http.HandlerFunc, opts ...client.Option) *client.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	opts = append([]client.Option{
		client.WithBackOff(func() backoff.BackOff { return backoff.NewConstantBackOff(time.Millisecond) }),
	}, opts...)
	return client.New(srv.URL, opts...)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_AuthorizationHeader(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		writeJSON(w, http.StatusOK, []any{})
	}, client.WithToken("abc"))

	_, err := c.ListTasks(context.Background(), "")
	require.NoError(t, err)

	c.SetToken("")
	_, err = c.ListTasks(context.Background(), "")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Bearer abc", ""}, seen)
}

func TestClient_ListTasksDecodesLegacyAssignee(t *testing.T) {
	id := uuid.New()
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks", r.URL.Path)
		assert.Equal(t, "me@example.com", r.URL.Query().Get("userEmail"))
		_, _ = io.WriteString(w, `[{"id":"`+id.String()+`","title":"t","status":"W_TRAKCIE",
			"priority":"WYSOKI","userId":"u1","assignedTo":"u2 (Bob)","sharedWith":[],"version":3,"isOverdue":false}]`)
	})

	tasks, err := c.ListTasks(context.Background(), "me@example.com")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].UUID)
	assert.Equal(t, task.StatusInProgress, tasks[0].Status)
	assert.Equal(t, task.Assignees{"u2 (Bob)"}, tasks[0].AssignedTo)
	assert.Equal(t, 3, tasks[0].Version)
}

func TestClient_ReadsRetry(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "busy"})
			return
		}
		writeJSON(w, http.StatusOK, []any{})
	}, client.WithRetries(3))

	_, err := c.ListTasks(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ReadsGiveUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}, client.WithRetries(2))

	_, err := c.ListTasks(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "NOT_FOUND", "message": "task not found"})
	})

	_, err := c.GetTask(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "task not found", apiErr.Message)
}

func TestClient_MutationsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "busy"})
	})

	_, err := c.CreateTask(context.Background(), dto.CreateTaskRequest{Title: "t"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_UpdateConflict(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, http.MethodPut, r.Method)
		assert.EqualValues(t, 2, body["version"])
		writeJSON(w, http.StatusConflict, map[string]any{"error": "VERSION_CONFLICT", "message": "task was modified"})
	})

	version := 2
	_, err := c.UpdateTask(context.Background(), "abc", dto.UpdateTaskRequest{Version: &version})
	require.Error(t, err)
	assert.True(t, client.IsConflict(err))
}

func TestClient_Share(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks/abc/share", r.URL.Path)
		var req dto.ShareTaskRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"u2", "u3"}, req.UserIDs)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Task shared with 2 new user(s)"})
	})

	resp, err := c.ShareTask(context.Background(), "abc", []string{"u2", "u3"}, "")
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestClient_DeleteNoContent(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	assert.NoError(t, c.DeleteTask(context.Background(), "abc"))
}

func TestClient_UploadFiles(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fhs := r.MultipartForm.File["files"]
		require.Len(t, fhs, 2)
		assert.Equal(t, "a.png", fhs[0].Filename)
		assert.Equal(t, "image/png", fhs[0].Header.Get("Content-Type"))
		writeJSON(w, http.StatusOK, dto.UploadResponse{Files: []string{"/files/images/1.png", "/files/images/2.jpg"}})
	})

	refs, err := c.UploadFiles(context.Background(), []client.Upload{
		{Name: "dir/a.png", ContentType: "image/png", Body: strings.NewReader("png")},
		{Name: "b.jpg", ContentType: "image/jpeg", Body: strings.NewReader("jpg")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/files/images/1.png", "/files/images/2.jpg"}, refs)
}

func TestClient_DeleteImageUsesBaseName(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/images/1.png", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"message": "file deleted"})
	})
	assert.NoError(t, c.DeleteImage(context.Background(), "/files/images/1.png"))
}
