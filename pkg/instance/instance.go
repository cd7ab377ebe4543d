package instance

import (
	"os"

	"github.com/expresskart/expresskart-backend/pkg/env"
)

// ID identifies this process replica in logs and lock tokens. It prefers an
// explicit EXPRESSKART_INSTANCE_ID, then the platform dyno name, then the host.
func ID() string {
	if id, ok := env.First("EXPRESSKART_INSTANCE_ID", "DYNO"); ok {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
