package configs

// HTTP defines configuration for the HTTP server. Host and Port together
// form the listen address; an empty host binds every interface, which is
// sufficient for most deployments.
type HTTP struct {
	// Host is the interface the HTTP server binds to. Empty means all.
	Host string `env:"HOST" envDefault:""`
	// Port is the TCP port the HTTP server will listen on. Defaults to 8080.
	Port uint16 `env:"PORT" envDefault:"8080"`
}
