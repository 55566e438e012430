package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"promptbook/internal/auth"
	"promptbook/internal/journal"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// day 19 after start
var now = time.Date(2026, 1, 20, 15, 0, 0, 0, time.UTC)

type fakeUsers struct {
	mu   sync.Mutex
	byID map[uint64]*auth.User
	next uint64
}

func newFakeUsers(us ...auth.User) *fakeUsers {
	f := &fakeUsers{byID: map[uint64]*auth.User{}}
	for _, u := range us {
		u := u
		f.byID[u.ID] = &u
		f.next = max(f.next, u.ID)
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, email, hash string, admin bool) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return nil, auth.ErrEmailTaken
		}
	}
	f.next++
	u := &auth.User{ID: f.next, Email: email, PasswordHash: hash, IsAdmin: admin}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) ByEmail(_ context.Context, email string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (f *fakeUsers) ByID(_ context.Context, id uint64) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) List(_ context.Context) ([]auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]auth.User, 0, len(f.byID))
	for id := uint64(1); id <= f.next; id++ {
		if u, ok := f.byID[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) SetPassword(_ context.Context, id uint64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) ConsumeLink(_ context.Context, id uint64, version int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	if u.LinkVersion != version {
		return auth.ErrLinkUsed
	}
	u.LinkVersion++
	return nil
}

func (f *fakeUsers) IsAdmin(ctx context.Context, id uint64) (bool, error) {
	u, err := f.ByID(ctx, id)
	if err != nil {
		return false, nil
	}
	return u.IsAdmin, nil
}

// asUser mounts routes behind a middleware that authenticates every request as uid.
func asUser(uid uint64, mount func(r chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), uid)))
		})
	})
	mount(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func entry(uid uint64, week int, content, status string) journal.Entry {
	at := start.AddDate(0, 0, 7*(week-1)+1)
	return journal.Entry{
		ID:        fmt.Sprintf("e-%d-%d", uid, week),
		UserID:    uid,
		Week:      week,
		Title:     "t",
		Content:   content,
		Status:    status,
		CreatedAt: at,
		UpdatedAt: at,
	}
}
