package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokens map[uint64][]string

func (s staticTokens) TokensByUser(_ context.Context, userID uint64) ([]string, error) {
	return s[userID], nil
}

type failingTokens struct{}

func (failingTokens) TokensByUser(context.Context, uint64) ([]string, error) {
	return nil, errors.New("store unavailable")
}

type sent struct {
	tokens []string
	title  string
	body   string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (r *recordingSender) Send(_ context.Context, tokens []string, title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{tokens: tokens, title: title, body: body})
	return r.err
}

func (r *recordingSender) messages() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sent(nil), r.sent...)
}

func TestQueue_DeliversToRegisteredTokens(t *testing.T) {
	sender := &recordingSender{}
	q := NewQueue(staticTokens{5: {"device-a", "device-b"}}, sender, Options{Title: "New Notification", Workers: 2, Size: 8})

	q.Enqueue(5, "You have been assigned a new task: Launch")
	q.Enqueue(6, "nobody listens")
	q.Close()

	msgs := sender.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, []string{"device-a", "device-b"}, msgs[0].tokens)
	assert.Equal(t, "New Notification", msgs[0].title)
	assert.Equal(t, "You have been assigned a new task: Launch", msgs[0].body)
}

func TestQueue_SwallowsFailures(t *testing.T) {
	sender := &recordingSender{err: errors.New("boom")}
	q := NewQueue(staticTokens{1: {"t"}}, sender, Options{Workers: 1, Size: 2})
	q.Enqueue(1, "hello")
	q.Close()
	assert.Len(t, sender.messages(), 1)

	quiet := &recordingSender{}
	q = NewQueue(failingTokens{}, quiet, Options{Workers: 1, Size: 2})
	q.Enqueue(1, "hello")
	q.Close()
	assert.Empty(t, quiet.messages())
}

func TestQueue_EnqueueAfterCloseIsDropped(t *testing.T) {
	sender := &recordingSender{}
	q := NewQueue(staticTokens{1: {"t"}}, sender, Options{Workers: 1, Size: 1})
	q.Close()
	q.Close()

	assert.NotPanics(t, func() { q.Enqueue(1, "late") })
	assert.Empty(t, sender.messages())
}

func TestHTTPSender_PostsMulticastMessage(t *testing.T) {
	var got fcmRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":2,"failure":0}`))
	}))
	defer srv.Close()

	s := NewHTTPSender(srv.URL, "secret")
	err := s.Send(context.Background(), []string{"a", "b"}, "Title", "Body")
	require.NoError(t, err)

	assert.Equal(t, "key=secret", auth)
	assert.Equal(t, []string{"a", "b"}, got.RegistrationIDs)
	assert.Equal(t, "Title", got.Notification.Title)
	assert.Equal(t, "Body", got.Notification.Body)
}

func TestHTTPSender_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewHTTPSender(srv.URL, "secret")
	for i := 0; i < 4; i++ {
		err := s.Send(context.Background(), []string{"a"}, "t", "b")
		assert.ErrorIs(t, err, ErrDeliveryRejected)
	}

	before := atomic.LoadInt32(&calls)
	err := s.Send(context.Background(), []string{"a"}, "t", "b")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, before, atomic.LoadInt32(&calls))
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), []string{"x"}, "t", "b"))
}

func TestNewQueue_Defaults(t *testing.T) {
	q := NewQueue(staticTokens{}, &recordingSender{}, Options{})
	defer q.Close()
	assert.Equal(t, 1, cap(q.jobs))
	assert.Equal(t, 10*time.Second, q.timeout)
}
