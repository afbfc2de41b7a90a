package egpconfig

import "testing"

func TestDefaultSizesL1UnboundedL2Bounded(t *testing.T) {
	cfg := Default()
	if cfg.L1.MaxItems != 0 {
		t.Errorf("expected default L1 to be unbounded, got MaxItems=%d", cfg.L1.MaxItems)
	}
	if cfg.L2.MaxItems != 4096 || cfg.L2.PurgeCount != 256 {
		t.Errorf("unexpected default L2 sizing: %+v", cfg.L2)
	}
	if cfg.Redis != nil {
		t.Error("expected no redis layer by default")
	}
}

func TestNewAppliesOptionsOverDefaults(t *testing.T) {
	cfg := New(
		WithL1(CacheLayerConfig{MaxItems: 100, PurgeCount: 10}),
		WithL2(CacheLayerConfig{MaxItems: 8192, PurgeCount: 512}),
		WithRedis(RedisConfig{Addr: "localhost:6379", DB: 2}),
	)
	if cfg.L1.MaxItems != 100 || cfg.L1.PurgeCount != 10 {
		t.Errorf("WithL1 not applied: %+v", cfg.L1)
	}
	if cfg.L2.MaxItems != 8192 {
		t.Errorf("WithL2 not applied: %+v", cfg.L2)
	}
	if cfg.Redis == nil || cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 2 {
		t.Errorf("WithRedis not applied: %+v", cfg.Redis)
	}
}

func TestOptionsAppliedInOrderLastWins(t *testing.T) {
	cfg := New(
		WithL1(CacheLayerConfig{MaxItems: 1}),
		WithL1(CacheLayerConfig{MaxItems: 2}),
	)
	if cfg.L1.MaxItems != 2 {
		t.Errorf("expected last WithL1 to win, got %d", cfg.L1.MaxItems)
	}
}
