// Package infra contains technical adapters: the serial ingestion adapter,
// metrics exporters, the MQTT and Redis bridges and Sentry reporting. These
// packages depend only on the interfaces defined in the core packages.
package infra
