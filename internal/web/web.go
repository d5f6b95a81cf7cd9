// Package web serves the HTML screens of the app: name entry, the friend
// list, the clear-all confirmation and the friend detail page.
//
// Pages are rendered on the server from embedded templates. Every form
// carries the friend-list version it was rendered from so a stale page is
// rejected instead of overwriting newer data.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mmynk/friendshipbank/internal/bank"
	"github.com/mmynk/friendshipbank/internal/ledger"
	"github.com/mmynk/friendshipbank/internal/models"
	"github.com/mmynk/friendshipbank/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"balanceClass": func(n int64) string {
		if n >= 0 {
			return "positive"
		}
		return "negative"
	},
	"signed": func(n int64) string {
		if n > 0 {
			return "+" + strconv.FormatInt(n, 10)
		}
		return strconv.FormatInt(n, 10)
	},
	"shortDate": func(t models.Transaction) string {
		ts := t.Time()
		if ts.IsZero() {
			return t.Date
		}
		return ts.Format("Jan 2, 2006")
	},
}

// page is the data every template receives.
type page struct {
	UserName string
	Notice   string
	Version  int64
	Prompt   string
	Friends  []models.Friend
	Friend   models.Friend
	Acts     []models.Act
}

// Handler renders the screens over a Bank.
type Handler struct {
	bank        *bank.Bank
	manifestURL string
	pages       map[string]*template.Template
}

// New parses the templates and returns a Handler. manifestURL is the target
// of the /.well-known/farcaster.json redirect; empty disables it.
func New(b *bank.Bank, manifestURL string) (*Handler, error) {
	h := &Handler{
		bank:        b,
		manifestURL: manifestURL,
		pages:       make(map[string]*template.Template),
	}
	for _, name := range []string{"index", "home", "clear", "friend"} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		h.pages[name] = tmpl
	}
	return h, nil
}

// Register adds the screen routes to r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/", h.nameEntry).Methods(http.MethodGet)
	r.HandleFunc("/", h.enterName).Methods(http.MethodPost)
	r.HandleFunc("/home", h.home).Methods(http.MethodGet)
	r.HandleFunc("/home/friends", h.addFriend).Methods(http.MethodPost)
	r.HandleFunc("/home/clear", h.confirmClear).Methods(http.MethodGet)
	r.HandleFunc("/home/clear", h.clear).Methods(http.MethodPost)
	r.HandleFunc("/signout", h.signOut).Methods(http.MethodPost)
	r.HandleFunc("/friend/{id}", h.friend).Methods(http.MethodGet)
	r.HandleFunc("/friend/{id}/transactions", h.recordTransfer).Methods(http.MethodPost)
	r.HandleFunc("/friend/{id}/acts", h.recordAct).Methods(http.MethodPost)
	r.HandleFunc("/.well-known/farcaster.json", h.manifest).Methods(http.MethodGet)
}

func (h *Handler) nameEntry(w http.ResponseWriter, r *http.Request) {
	name, err := h.bank.Profile(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if name != "" {
		http.Redirect(w, r, "/home", http.StatusFound)
		return
	}
	h.render(w, r, "index", http.StatusOK, page{})
}

func (h *Handler) enterName(w http.ResponseWriter, r *http.Request) {
	err := h.bank.EnterName(r.Context(), r.PostFormValue("name"))
	switch {
	case errors.Is(err, ledger.ErrEmptyName):
		h.render(w, r, "index", http.StatusOK, page{})
	case err != nil:
		h.serverError(w, r, err)
	default:
		http.Redirect(w, r, "/home", http.StatusSeeOther)
	}
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	h.renderHome(w, r, http.StatusOK, "")
}

func (h *Handler) renderHome(w http.ResponseWriter, r *http.Request, status int, notice string) {
	view, err := h.bank.Home(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, "home", status, page{
		UserName: view.UserName,
		Notice:   notice,
		Version:  view.Version,
		Friends:  view.Friends,
	})
}

func (h *Handler) addFriend(w http.ResponseWriter, r *http.Request) {
	_, err := h.bank.AddFriend(r.Context(), r.PostFormValue("name"), formVersion(r))
	if err != nil && !errors.Is(err, ledger.ErrEmptyName) {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (h *Handler) confirmClear(w http.ResponseWriter, r *http.Request) {
	view, err := h.bank.Home(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, "clear", http.StatusOK, page{
		UserName: view.UserName,
		Version:  view.Version,
		Prompt:   bank.ClearPrompt,
	})
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	confirmed := bank.Confirmed(r.PostFormValue("confirm") == "yes")
	err := h.bank.ClearFriends(r.Context(), confirmed, formVersion(r))
	if err != nil && !errors.Is(err, bank.ErrNotConfirmed) {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.bank.SignOut(r.Context()); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) friend(w http.ResponseWriter, r *http.Request) {
	view, err := h.bank.Friend(r.Context(), mux.Vars(r)["id"])
	switch {
	case errors.Is(err, ledger.ErrFriendNotFound):
		http.Redirect(w, r, "/home", http.StatusFound)
	case err != nil:
		h.fail(w, r, err)
	default:
		h.renderFriend(w, r, view, http.StatusOK, "")
	}
}

func (h *Handler) renderFriend(w http.ResponseWriter, r *http.Request, view *bank.FriendView, status int, notice string) {
	h.render(w, r, "friend", status, page{
		UserName: view.UserName,
		Notice:   notice,
		Version:  view.Version,
		Friend:   view.Friend,
		Acts:     view.Acts,
	})
}

func (h *Handler) recordTransfer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	_, err := h.bank.RecordTransfer(r.Context(), id,
		r.PostFormValue("direction"),
		r.PostFormValue("amount"),
		r.PostFormValue("description"),
		formVersion(r),
	)
	h.afterRecord(w, r, id, err)
}

func (h *Handler) recordAct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var err error
	if act := r.PostFormValue("act"); act != "" {
		_, err = h.bank.RecordAct(r.Context(), id, act, formVersion(r))
	} else {
		_, err = h.bank.RecordCustomAct(r.Context(), id,
			r.PostFormValue("description"),
			r.PostFormValue("points"),
			formVersion(r),
		)
	}
	h.afterRecord(w, r, id, err)
}

// afterRecord redirects back to the friend page on success. A rejected
// entry re-renders the page with a notice and the unchanged ledger.
func (h *Handler) afterRecord(w http.ResponseWriter, r *http.Request, id string, err error) {
	if err == nil {
		http.Redirect(w, r, "/friend/"+id, http.StatusSeeOther)
		return
	}

	status, notice, ok := classify(err)
	if !ok {
		h.fail(w, r, err)
		return
	}
	view, viewErr := h.bank.Friend(r.Context(), id)
	if viewErr != nil {
		if errors.Is(viewErr, ledger.ErrFriendNotFound) {
			h.renderHome(w, r, http.StatusNotFound, notice)
			return
		}
		h.fail(w, r, viewErr)
		return
	}
	h.renderFriend(w, r, view, status, notice)
}

func (h *Handler) manifest(w http.ResponseWriter, r *http.Request) {
	if h.manifestURL == "" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, h.manifestURL, http.StatusTemporaryRedirect)
}

// fail handles errors shared by every screen: no user goes back to name
// entry, a conflict re-renders the list, anything unclassified is a 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, bank.ErrNoUser) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if errors.Is(err, bank.ErrConflict) || errors.Is(err, ledger.ErrFriendNotFound) {
		status, notice, _ := classify(err)
		h.renderHome(w, r, status, notice)
		return
	}
	h.serverError(w, r, err)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, status int, data page) {
	var buf bytes.Buffer
	if err := h.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.serverError(w, r, fmt.Errorf("failed to render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// classify maps user-facing errors to a status and notice text.
func classify(err error) (int, string, bool) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return http.StatusBadRequest, "Please enter a valid amount", true
	case errors.Is(err, ledger.ErrNonPositiveAmount):
		return http.StatusBadRequest, "Amount must be greater than zero", true
	case errors.Is(err, ledger.ErrEmptyDescription):
		return http.StatusBadRequest, "Please describe what happened", true
	case errors.Is(err, ledger.ErrUnknownDirection):
		return http.StatusBadRequest, "Choose I Gave or I Received", true
	case errors.Is(err, ledger.ErrUnknownAct):
		return http.StatusNotFound, "Unknown act", true
	case errors.Is(err, ledger.ErrFriendNotFound):
		return http.StatusNotFound, "Friend not found", true
	case errors.Is(err, bank.ErrConflict):
		return http.StatusConflict, "Your friends were changed elsewhere. Reload and try again.", true
	}
	return 0, "", false
}

// formVersion reads the hidden version field. A page rendered before any
// friend was saved carries 0, which still takes part in the check; only a
// missing or malformed field skips it.
func formVersion(r *http.Request) int64 {
	v, err := strconv.ParseInt(r.PostFormValue("version"), 10, 64)
	if err != nil {
		return storage.AnyVersion
	}
	return v
}
