package handler

import "net/http"

// ConfigStatus says which optional settings are in place. It carries
// flags and the store driver name, never a configured value.
type ConfigStatus struct {
	AdminEmail        bool   `json:"adminEmail"`
	AdminPasswordHash bool   `json:"adminPasswordHash"`
	SessionSecret     bool   `json:"sessionSecret"`
	GitHubOAuth       bool   `json:"githubOAuth"`
	RedisCache        bool   `json:"redisCache"`
	PDFRenderer       bool   `json:"pdfRenderer"`
	StoreDriver       string `json:"storeDriver"`
}

// HandleConfigStatus reports status as JSON.
func HandleConfigStatus(status ConfigStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, status)
	}
}

// HandleHealth answers liveness probes.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
