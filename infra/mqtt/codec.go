package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/kilianp07/evdash/core/telemetry"
)

const (
	EncodingJSON    = "json"
	EncodingMsgpack = "msgpack"
)

// Encoder serialises a snapshot for the wire.
type Encoder interface {
	Encode(s telemetry.Snapshot) ([]byte, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(telemetry.Snapshot) ([]byte, error)

func (f EncoderFunc) Encode(s telemetry.Snapshot) ([]byte, error) { return f(s) }

// NewEncoder returns the encoder for name.
func NewEncoder(name string) (Encoder, error) {
	switch name {
	case EncodingJSON, "":
		return EncoderFunc(func(s telemetry.Snapshot) ([]byte, error) { return json.Marshal(s) }), nil
	case EncodingMsgpack:
		return EncoderFunc(func(s telemetry.Snapshot) ([]byte, error) { return msgpack.Marshal(&s) }), nil
	default:
		return nil, fmt.Errorf("unknown mqtt encoding %q", name)
	}
}
