package demoserver

// Config holds configuration for the demo server.
type Config struct {
	// Port is the port on which the demo server listens.
	Port int

	// DSN is the SQLite database path; ":memory:" keeps everything in RAM.
	DSN string

	// PasswordCost is the bcrypt cost; 0 uses bcrypt's default.
	PasswordCost int
}

// DefaultConfig returns a Config with sensible defaults. The port matches the
// seeder's default base URL.
func DefaultConfig() Config {
	return Config{
		Port: 8080,
		DSN:  ":memory:",
	}
}
