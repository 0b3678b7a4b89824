package handlers

import "net/http"

func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func Root(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Service Commande OK")
}
