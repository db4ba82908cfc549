package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend_PostsHTMLMessage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL

	require.NoError(t, tn.Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "<b>hi</b>", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSend_ReportsAPIDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL

	err := tn.Send(context.Background(), "msg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestDispatch_OnlyConfiguredChat(t *testing.T) {
	tn := NewTelegramNotifier("TOKEN", "42", "")
	var seen []string
	handler := func(_ context.Context, cmd string) string {
		seen = append(seen, cmd)
		return "reply to " + cmd
	}

	var u telegramUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"update_id":1,"message":{"text":" /status ","chat":{"id":42}}}`), &u))
	assert.Equal(t, "reply to /status", tn.dispatch(context.Background(), u, handler))

	require.NoError(t, json.Unmarshal([]byte(`{"update_id":2,"message":{"text":"/status","chat":{"id":7}}}`), &u))
	assert.Empty(t, tn.dispatch(context.Background(), u, handler))

	assert.Empty(t, tn.dispatch(context.Background(), telegramUpdate{UpdateID: 3}, handler))
	assert.Equal(t, []string{"/status"}, seen)
}

func TestStartPolling_AnswersCommands(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	replies := make(chan string, 1)
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/getUpdates":
			if polls.Add(1) == 1 {
				w.Write([]byte(`{"ok":true,"result":[{"update_id":10,"message":{"text":"/ping","chat":{"id":42}}}]}`))
				return
			}
			<-r.Context().Done()
		case "/botTOKEN/sendMessage":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			replies <- body["text"].(string)
			w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL

	done := make(chan struct{})
	go func() {
		tn.StartPolling(ctx, func(_ context.Context, cmd string) string { return "pong " + cmd })
		close(done)
	}()

	select {
	case got := <-replies:
		assert.Equal(t, "pong /ping", got)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply sent")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
}

func TestSendWithRetry_RecoversAfterFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL

	require.NoError(t, tn.SendWithRetry(context.Background(), "msg", 2))
	assert.Equal(t, int32(2), calls.Load())
}

func TestSendWithRetry_StopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := tn.SendWithRetry(ctx, "msg", 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
