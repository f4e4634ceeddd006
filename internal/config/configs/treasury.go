package configs

import "time"

// Treasury configures the client used to pay raised funds out to
// beneficiaries and to the administrator.
type Treasury struct {
	// Endpoint is the base URL of the settlement service executing
	// outbound transfers. When empty, transfers are written to the log
	// instead, which is only acceptable for local development.
	Endpoint string `env:"ENDPOINT"`

	// Timeout bounds each transfer request.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"8s"`
}
