//go:build !no_containers

package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/evdash/core/telemetry"
	"github.com/kilianp07/evdash/test/util"
)

func TestBridgeWithMosquitto(t *testing.T) {
	broker := util.RequireMosquitto(t)

	got := make(chan telemetry.Snapshot, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("evdash-test-sub"))
	if tok := sub.Connect(); tok.Wait() && tok.Error() != nil {
		t.Fatalf("subscriber connect: %v", tok.Error())
	}
	defer sub.Disconnect(100)
	tok := sub.Subscribe("evdash/car-1/telemetry", 1, func(_ paho.Client, m paho.Message) {
		var s telemetry.Snapshot
		if err := json.Unmarshal(m.Payload(), &s); err == nil {
			select {
			case got <- s:
			default:
			}
		}
	})
	if tok.Wait() && tok.Error() != nil {
		t.Fatalf("subscribe: %v", tok.Error())
	}

	b, err := NewBridge(Config{Enabled: true, Broker: broker, QoS: 1}, "car-1")
	if err != nil {
		t.Fatalf("new bridge: %v", err)
	}
	defer b.Close()

	snap := telemetry.Snapshot{Timestamp: 1500, Speed: 42, Temperature: 30, Voltage: 80, SoC: 90, Wh: 3240}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.Forward(ctx, snap); err != nil {
		t.Fatalf("forward: %v", err)
	}

	select {
	case s := <-got:
		if s.Speed != 42 || s.Wh != 3240 {
			t.Fatalf("unexpected snapshot %+v", s)
		}
	case <-ctx.Done():
		t.Fatal("snapshot not received")
	}
}
