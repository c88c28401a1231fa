package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/dailyreason/dailyreason/internal/contentful"
)

// FakeContentful is an in-memory Management API holding entries for one space
type FakeContentful struct {
	*httptest.Server

	mu      sync.Mutex
	entries map[string]*contentful.Entry
	nextID  int
	down    bool
	creates int
}

// NewFakeContentful starts an empty Management API
func NewFakeContentful() *FakeContentful {
	f := &FakeContentful{entries: make(map[string]*contentful.Entry)}

	r := chi.NewRouter()
	r.Route("/spaces/{space}/environments/{env}/entries", func(r chi.Router) {
		r.Post("/", f.create)
		r.Get("/{id}", f.get)
		r.Put("/{id}", f.update)
		r.Put("/{id}/published", f.publish)
	})
	f.Server = httptest.NewServer(f.availability(r))
	return f
}

// Entry returns a copy of the stored entry, or nil
func (f *FakeContentful) Entry(id string) *contentful.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil
	}
	cp := *e
	return &cp
}

// Delete removes an entry as if it was deleted in the web app
func (f *FakeContentful) Delete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, id)
}

// Creates reports how many entries were created
func (f *FakeContentful) Creates() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

// SetDown makes every request fail with 503
func (f *FakeContentful) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *FakeContentful) availability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		down := f.down
		f.mu.Unlock()
		if down {
			writeError(w, http.StatusServiceUnavailable, "ServiceUnavailable")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeContentful) create(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(contentful.HeaderContentType) == "" {
		writeError(w, http.StatusUnprocessableEntity, "InvalidEntry")
		return
	}

	var body contentful.Entry
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest")
		return
	}

	f.mu.Lock()
	f.nextID++
	f.creates++
	entry := &contentful.Entry{
		Sys:    contentful.Sys{ID: fmt.Sprintf("entry-%d", f.nextID), Type: "Entry", Version: 1},
		Fields: body.Fields,
	}
	f.entries[entry.Sys.ID] = entry
	cp := *entry
	f.mu.Unlock()

	writeEntry(w, http.StatusCreated, &cp)
}

func (f *FakeContentful) get(w http.ResponseWriter, r *http.Request) {
	entry := f.Entry(chi.URLParam(r, "id"))
	if entry == nil {
		writeError(w, http.StatusNotFound, "NotFound")
		return
	}
	writeEntry(w, http.StatusOK, entry)
}

func (f *FakeContentful) update(w http.ResponseWriter, r *http.Request) {
	var body contentful.Entry
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest")
		return
	}

	f.mutate(w, r, func(e *contentful.Entry) {
		e.Fields = body.Fields
		e.Sys.Version++
	})
}

func (f *FakeContentful) publish(w http.ResponseWriter, r *http.Request) {
	f.mutate(w, r, func(e *contentful.Entry) {
		e.Sys.PublishedVersion = e.Sys.Version
		e.Sys.Version++
	})
}

// mutate applies change when X-Contentful-Version matches the stored version
func (f *FakeContentful) mutate(w http.ResponseWriter, r *http.Request, change func(*contentful.Entry)) {
	version, err := strconv.Atoi(r.Header.Get(contentful.HeaderVersion))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest")
		return
	}

	f.mu.Lock()
	entry, ok := f.entries[chi.URLParam(r, "id")]
	if !ok {
		f.mu.Unlock()
		writeError(w, http.StatusNotFound, "NotFound")
		return
	}
	if entry.Sys.Version != version {
		f.mu.Unlock()
		writeError(w, http.StatusConflict, "VersionMismatch")
		return
	}
	change(entry)
	cp := *entry
	f.mu.Unlock()

	writeEntry(w, http.StatusOK, &cp)
}

func writeEntry(w http.ResponseWriter, status int, entry *contentful.Entry) {
	w.Header().Set("Content-Type", contentful.ContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(entry)
}

func writeError(w http.ResponseWriter, status int, id string) {
	w.Header().Set("Content-Type", contentful.ContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"sys":     map[string]string{"type": "Error", "id": id},
		"message": id,
	})
}
