package httpapi

import "net/http"

// Root mirrors the basic liveness body load balancers poke at.
func Root(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("Server is running"))
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
