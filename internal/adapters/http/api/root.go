package api

import "net/http"

const welcomeMessage = "Welcome to the Student Roster API!"

// RootHandler serves the welcome document.
type RootHandler struct{}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": welcomeMessage,
		"status":  "success",
	})
}
