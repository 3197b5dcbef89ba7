package instance

import (
	"os"
	"strings"
)

// GetID returns the process identifier used in logs: the platform dyno name,
// then WORKER_ID, then "local".
func GetID() string {
	for _, key := range []string{"DYNO", "WORKER_ID"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	return "local"
}
