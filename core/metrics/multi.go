package metrics

import "errors"

// MultiSink fans out records to several sinks. Every sink is called even if
// an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordSnapshot(ev SnapshotEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordSnapshot(ev))
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordTrip(ev TripEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(TripRecorder); ok {
			errs = append(errs, r.RecordTrip(ev))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordStoplight(ev StoplightEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(StoplightRecorder); ok {
			errs = append(errs, r.RecordStoplight(ev))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordIngest(ev IngestEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(IngestRecorder); ok {
			errs = append(errs, r.RecordIngest(ev))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordProducer(ev ProducerEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(ProducerRecorder); ok {
			errs = append(errs, r.RecordProducer(ev))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordSubscribers(n int) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(SubscriberRecorder); ok {
			errs = append(errs, r.RecordSubscribers(n))
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
