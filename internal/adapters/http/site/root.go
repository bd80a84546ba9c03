// Package site serves the embedded browser dashboard.
package site

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Error constants
var (
	ErrNilRouter = errors.New("dashboard: router is nil")
)

// Register serves the embedded dashboard at / and its assets below it.
func Register(r chi.Router) {
	if r == nil {
		panic(ErrNilRouter)
	}
	files := http.FileServer(FS())
	r.Handle("/", files)
	r.Handle("/assets/*", files)
}
