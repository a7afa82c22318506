package models

// LoginAttemptStatus is the guard's verdict for one (client address, username) pair.
type LoginAttemptStatus struct {
	Blocked               bool
	AttemptsRemaining     int
	BlockMinutesRemaining int
}

// LoginClientKey identifies whose failures are being counted.
// Distinct usernames from one address, and one username from distinct
// addresses, are tracked independently.
type LoginClientKey struct {
	IPAddress string
	Username  string
}
