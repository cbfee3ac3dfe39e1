package models

// Identity is the already verified caller. Email may change over time,
// Subject never does.
type Identity struct {
	Subject string
	Email   string
}
