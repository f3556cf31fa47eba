package instance

import "os"

// GetID identifies this process in logs and lock tokens. DZORDERS_INSTANCE_ID
// wins, then the hostname.
func GetID() string {
	if id := os.Getenv("DZORDERS_INSTANCE_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "instance-0"
}
