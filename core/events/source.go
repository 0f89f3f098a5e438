package events

// RecordDropped is published for each serial line that could not be parsed.
type RecordDropped struct {
	Reason string
	Line   string
}

// ProducerStopped is published when the active producer returns. Err is nil
// on a clean shutdown.
type ProducerStopped struct {
	Producer string
	Err      error
}

// RecordAccepted is published for each serial line turned into a snapshot.
type RecordAccepted struct{}

// ProducerStarted is published when the active producer begins running.
type ProducerStarted struct {
	Producer string
}
