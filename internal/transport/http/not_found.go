package http

import "net/http"

// NotFoundHandler keeps unknown routes on the same JSON error surface as
// the rest of the API.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
}
