package configs

// Ledger holds the settings of the campaign ledger itself.
type Ledger struct {
	// Owner is the administrator principal, the only identity allowed to
	// sweep or record residual value. It is fixed for the process lifetime
	// and must be set.
	Owner string `env:"OWNER,required"`

	// Storage selects the repository backing the ledger: "postgres" or
	// "memory". The memory store keeps everything in process and loses it
	// on exit; it exists for local development.
	Storage string `env:"STORAGE" envDefault:"postgres"`
}
