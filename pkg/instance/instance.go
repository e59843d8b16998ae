package instance

import "github.com/angelmondragon/records-backend/pkg/env"

// ID names the running process in logs and broker client ids. It prefers
// RECORDS_INSTANCE_ID, then the platform's DYNO or HOSTNAME.
func ID(fallback string) string {
	return env.First(fallback, "RECORDS_INSTANCE_ID", "DYNO", "HOSTNAME")
}
