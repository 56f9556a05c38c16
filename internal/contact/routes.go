package contact

import (
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the contact API routes.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Route("/api/contact", func(r chi.Router) {
		r.Post("/", handleCreate(store))
		r.Get("/", handleList(store))
	})
}

func handleCreate(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f Fields
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "application/json" {
			if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
		} else {
			if err := r.ParseForm(); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
				return
			}
			f = Fields{Name: r.PostForm.Get("name"), Email: r.PostForm.Get("email"), Message: r.PostForm.Get("message")}
		}

		sub, err := store.Create(r.Context(), f, r.RemoteAddr)
		if errors.Is(err, ErrRequiredFields) || errors.Is(err, ErrInvalidEmail) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if err != nil {
			log.Printf("contact: storing message: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not store message"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": sub.ID})
	}
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		subs, err := store.List(r.Context(), limit)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if subs == nil {
			subs = []Submission{}
		}
		writeJSON(w, http.StatusOK, subs)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
