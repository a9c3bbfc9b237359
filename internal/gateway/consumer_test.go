package gateway

import "testing"

// Two instances must never share a consumer name: JetStream balances a
// shared consumer across its subscribers, so one instance would absorb
// events the other needs to apply to its own store.
func TestConsumerNamePerInstance(t *testing.T) {
	cfg := DefaultConsumerConfig()

	a := consumerNameFor(cfg.ConsumerPrefix, "11111111-aaaa-bbbb-cccc-111111111111")
	b := consumerNameFor(cfg.ConsumerPrefix, "22222222-aaaa-bbbb-cccc-222222222222")

	if a == b {
		t.Fatalf("expected distinct consumer names per origin, both %q", a)
	}
	if a == cfg.ConsumerPrefix || b == cfg.ConsumerPrefix {
		t.Error("expected the bare prefix never to be used as a consumer name")
	}
}

func TestDefaultConsumerConfigExpiresStaleConsumers(t *testing.T) {
	cfg := DefaultConsumerConfig()
	if cfg.InactiveThreshold <= 0 {
		t.Error("expected a positive inactive threshold so dead instances' consumers expire")
	}
}
