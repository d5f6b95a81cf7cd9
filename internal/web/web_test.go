package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/mmynk/friendshipbank/internal/bank"
	"github.com/mmynk/friendshipbank/internal/models"
	"github.com/mmynk/friendshipbank/internal/storage"
	"github.com/mmynk/friendshipbank/internal/storage/memory"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type testApp struct {
	router *mux.Router
	bank   *bank.Bank
	repo   *storage.Repository
	kv     *memory.Store
}

func setup(t *testing.T, manifestURL string) *testApp {
	t.Helper()

	kv := memory.New()
	repo := storage.NewRepository(kv)
	b := bank.New(repo,
		bank.WithClock(fixedClock{time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}),
		bank.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	h, err := New(b, manifestURL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	router := mux.NewRouter()
	h.Register(router)
	return &testApp{router: router, bank: b, repo: repo, kv: kv}
}

func (a *testApp) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func (a *testApp) post(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testApp) signIn(t *testing.T) {
	t.Helper()
	if err := a.bank.EnterName(context.Background(), "Ada"); err != nil {
		t.Fatalf("EnterName failed: %v", err)
	}
}

func (a *testApp) addFriend(t *testing.T, name string) string {
	t.Helper()
	f, err := a.bank.AddFriend(context.Background(), name, storage.AnyVersion)
	if err != nil {
		t.Fatalf("AddFriend failed: %v", err)
	}
	return strconv.FormatInt(f.ID, 10)
}

func (a *testApp) friend(t *testing.T, id string) models.Friend {
	t.Helper()
	view, err := a.bank.Friend(context.Background(), id)
	if err != nil {
		t.Fatalf("Friend failed: %v", err)
	}
	return view.Friend
}

func expectRedirect(t *testing.T, rr *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rr.Code < 300 || rr.Code >= 400 {
		t.Fatalf("expected redirect, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Location"); got != location {
		t.Errorf("Location = %q, want %q", got, location)
	}
}

func TestNameEntry(t *testing.T) {
	app := setup(t, "")

	rr := app.get(t, "/")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "What should we call you?") {
		t.Fatalf("GET / = %d: %s", rr.Code, rr.Body.String())
	}

	// Blank names are ignored.
	rr = app.post(t, "/", url.Values{"name": {"   "}})
	if rr.Code != http.StatusOK {
		t.Errorf("blank name status = %d, want 200", rr.Code)
	}
	if name, _ := app.bank.Profile(context.Background()); name != "" {
		t.Errorf("blank name stored as %q", name)
	}

	expectRedirect(t, app.post(t, "/", url.Values{"name": {" Ada "}}), "/home")
	expectRedirect(t, app.get(t, "/"), "/home")
}

func TestRequiresName(t *testing.T) {
	app := setup(t, "")

	for _, path := range []string{"/home", "/home/clear", "/friend/1"} {
		expectRedirect(t, app.get(t, path), "/")
	}
}

func TestHome(t *testing.T) {
	app := setup(t, "")
	app.signIn(t)

	rr := app.get(t, "/home")
	body := rr.Body.String()
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /home = %d", rr.Code)
	}
	if !strings.Contains(body, "Hello, Ada!") || !strings.Contains(body, "No friends yet. Add one!") {
		t.Errorf("unexpected body: %s", body)
	}

	expectRedirect(t, app.post(t, "/home/friends", url.Values{"name": {"Al"}}), "/home")
	expectRedirect(t, app.post(t, "/home/friends", url.Values{"name": {"  "}}), "/home")

	friends, _, err := app.repo.Friends(context.Background())
	if err != nil {
		t.Fatalf("Friends failed: %v", err)
	}
	if len(friends) != 1 || friends[0].Name != "Al" {
		t.Errorf("friends = %+v, want only Al", friends)
	}
}

func TestHome_SortedByBalance(t *testing.T) {
	app := setup(t, "")
	app.signIn(t)

	al := app.addFriend(t, "Al")
	app.addFriend(t, "Bea")
	if _, err := app.bank.RecordTransfer(context.Background(), al, "gave", "3", "", storage.AnyVersion); err != nil {
		t.Fatalf("RecordTransfer failed: %v", err)
	}

	body := app.get(t, "/home").Body.String()
	if strings.Index(body, "Bea") > strings.Index(body, "Al<") {
		t.Errorf("expected Bea before Al: %s", body)
	}
}

func TestAddFriend_StaleVersion(t *testing.T) {
	app := setup(t, "")
	app.signIn(t)
	app.addFriend(t, "Al")

	rr := app.post(t, "/home/friends", url.Values{"name": {"Bea"}, "version": {"7"}})
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "changed elsewhere") {
		t.Errorf("missing conflict notice: %s", rr.Body.String())
	}
}

func TestAddFriend_EmptyListVersion(t *testing.T) {
	app := setup(t, "")
	app.signIn(t)

	// The page was rendered before any friend existed.
	if rr := app.get(t, "/home"); !strings.Contains(rr.Body.String(), `name="version" value="0"`) {
		t.Fatalf("home did not render version 0: %s", rr.Body.String())
	}
	app.addFriend(t, "Al")

	rr := app.post(t, "/home/friends", url.Values{"name": {"Bea"}, "version": {"0"}})
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
	if friends, _, _ := app.repo.Friends(context.Background()); len(friends) != 1 {
		t.Errorf("friends = %d, want 1", len(friends))
	}

	// Without a version field the write is unchecked.
	expectRedirect(t, app.post(t, "/home/friends", url.Values{"name": {"Bea"}}), "/home")
	if friends, _, _ := app.repo.Friends(context.Background()); len(friends) != 2 {
		t.Errorf("friends = %d, want 2", len(friends))
	}
}

func TestClear(t *testing.T) {
	app := setup(t, "")
	app.signIn(t)
	for _, name := range []string{"Al", "Bea", "Cy"} {
		app.addFriend(t, name)
	}

	rr := app.get(t, "/home/clear")
	if !strings.Contains(rr.Body.String(), "This cannot be undone.") {
		t.Errorf("missing prompt: %s", rr.Body.String())
	}

	expectRedirect(t, app.post(t, "/home/clear", url.Values{"confirm": {"no"}}), "/home")
	if friends, _, _ := app.repo.Friends(context.Background()); len(friends) != 3 {
		t.Fatalf("declined clear removed friends: %d left", len(friends))
	}

	expectRedirect(t, app.post(t, "/home/clear", url.Values{"confirm": {"yes"}}), "/home")
	if friends, _, _ := app.repo.Friends(context.Background()); len(friends) != 0 {
		t.Errorf("friends = %d after clear, want 0", len(friends))
	}
}

func TestSignOut(t *testing.T) {
	app := setup(t, "")
	app.signIn(t)
	app.addFriend(t, "Al")

	expectRedirect(t, app.post(t, "/signout", nil), "/")

	ctx := context.Background()
	if _, err := app.kv.Get(ctx, storage.KeyUserName); err != storage.ErrNotFound {
		t.Errorf("userName still stored: %v", err)
	}
	if _, err := app.kv.Get(ctx, storage.KeyFriends); err != storage.ErrNotFound {
		t.Errorf("friends still stored: %v", err)
	}
}

func TestFriendPage(t *testing.T) {
	app := setup(t, "")
	app.signIn(t)
	id := app.addFriend(t, "Al")

	rr := app.get(t, "/friend/"+id)
	body := rr.Body.String()
	if rr.Code != http.StatusOK {
		t.Fatalf("GET friend = %d", rr.Code)
	}
	for _, want := range []string{"Al", "Current Balance", "No transactions yet.", "I Gave", "Bought me a coffee"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	expectRedirect(t, app.get(t, "/friend/999"), "/home")
}

func TestRecordTransfer(t *testing.T) {
	app := setup(t, "")
	app.signIn(t)
	id := app.addFriend(t, "Al")

	expectRedirect(t, app.post(t, "/friend/"+id+"/transactions", url.Values{
		"direction": {"gave"},
		"amount":    {"10"},
	}), "/friend/"+id)

	f := app.friend(t, id)
	if f.Balance != -10 || len(f.Transactions) != 1 || f.Transactions[0].Description != "Money given" {
		t.Errorf("friend = %+v", f)
	}
	if f.Transactions[0].Date != "2024-05-01T10:00:00.000Z" {
		t.Errorf("date = %q", f.Transactions[0].Date)
	}

	body := app.get(t, "/friend/"+id).Body.String()
	if !strings.Contains(body, "May 1, 2024") {
		t.Errorf("history missing date: %s", body)
	}
}

func TestRecordTransfer_Rejected(t *testing.T) {
	app := setup(t, "")
	app.signIn(t)
	id := app.addFriend(t, "Al")

	tests := []struct {
		name       string
		path       string
		form       url.Values
		wantStatus int
		wantNotice string
	}{
		{
			name:       "non-numeric amount",
			path:       "/friend/" + id + "/transactions",
			form:       url.Values{"direction": {"gave"}, "amount": {"abc"}},
			wantStatus: http.StatusBadRequest,
			wantNotice: "Please enter a valid amount",
		},
		{
			name:       "negative amount",
			path:       "/friend/" + id + "/transactions",
			form:       url.Values{"direction": {"received"}, "amount": {"-5"}},
			wantStatus: http.StatusBadRequest,
			wantNotice: "Amount must be greater than zero",
		},
		{
			name:       "unknown act",
			path:       "/friend/" + id + "/acts",
			form:       url.Values{"act": {"juggling"}},
			wantStatus: http.StatusNotFound,
			wantNotice: "Unknown act",
		},
		{
			name:       "unknown friend",
			path:       "/friend/42/transactions",
			form:       url.Values{"direction": {"gave"}, "amount": {"5"}},
			wantStatus: http.StatusNotFound,
			wantNotice: "Friend not found",
		},
		{
			name:       "stale version",
			path:       "/friend/" + id + "/transactions",
			form:       url.Values{"direction": {"gave"}, "amount": {"5"}, "version": {"9"}},
			wantStatus: http.StatusConflict,
			wantNotice: "changed elsewhere",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := app.post(t, tt.path, tt.form)
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if !strings.Contains(rr.Body.String(), tt.wantNotice) {
				t.Errorf("body missing %q", tt.wantNotice)
			}
		})
	}

	if f := app.friend(t, id); f.Balance != 0 || len(f.Transactions) != 0 {
		t.Errorf("rejected entries changed friend: %+v", f)
	}
}

func TestRecordActs(t *testing.T) {
	app := setup(t, "")
	app.signIn(t)
	id := app.addFriend(t, "Al")

	expectRedirect(t, app.post(t, "/friend/"+id+"/acts", url.Values{"act": {"coffee"}}), "/friend/"+id)
	expectRedirect(t, app.post(t, "/friend/"+id+"/acts", url.Values{
		"description": {"Watered my plants"},
		"points":      {"3"},
	}), "/friend/"+id)

	f := app.friend(t, id)
	if f.Balance != 5 || len(f.Transactions) != 2 {
		t.Fatalf("friend = %+v", f)
	}
	if f.Transactions[0].Description != "Watered my plants" {
		t.Errorf("newest transaction = %q", f.Transactions[0].Description)
	}
}

func TestCorruptFriends(t *testing.T) {
	app := setup(t, "")
	app.signIn(t)
	if _, err := app.kv.Put(context.Background(), storage.KeyFriends, []byte("not json"), storage.AnyVersion); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if rr := app.get(t, "/home"); rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestManifest(t *testing.T) {
	tests := []struct {
		name        string
		manifestURL string
		wantStatus  int
	}{
		{"configured", "https://example.com/manifest.json", http.StatusTemporaryRedirect},
		{"unset", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setup(t, tt.manifestURL)
			rr := app.get(t, "/.well-known/farcaster.json")
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.manifestURL != "" && rr.Header().Get("Location") != tt.manifestURL {
				t.Errorf("Location = %q", rr.Header().Get("Location"))
			}
		})
	}
}
