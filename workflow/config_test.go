package workflow

import "testing"

func TestDefaultConfigMatchesDocumentedDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.DefaultStepOptions.TrackTiming {
		t.Fatal("expected default step options to track timing")
	}
	if cfg.DefaultStepOptions.SnapshotState || cfg.DefaultStepOptions.LogStart || cfg.DefaultStepOptions.LogFinish {
		t.Fatal("expected every other default step option to be disabled")
	}
	if cfg.DefaultTaskOptions.Concurrent {
		t.Fatal("expected default task options to be sequential")
	}
	if cfg.MaxConcurrentChildren != 0 {
		t.Fatal("expected unbounded concurrency by default")
	}
}

func TestConfigMergeOnlyAppliesNonZeroValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConcurrentChildren = 4

	override := Config{DefaultTaskOptions: TaskOptions{Name: "fanout", Concurrent: true}}
	cfg.Merge(&override)

	if cfg.DefaultTaskOptions.Name != "fanout" || !cfg.DefaultTaskOptions.Concurrent {
		t.Fatal("expected Merge to apply the overriding non-zero TaskOptions")
	}
	if cfg.MaxConcurrentChildren != 4 {
		t.Fatal("Merge must not clobber MaxConcurrentChildren with override's zero value")
	}
}

func TestConfigTaskOptionsSeedsMaxConcurrent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConcurrentChildren = 3

	opts := cfg.TaskOptions("fanout")
	if opts.Name != "fanout" {
		t.Fatalf("expected name 'fanout', got %q", opts.Name)
	}
	if opts.MaxConcurrent != 3 {
		t.Fatalf("expected MaxConcurrent seeded from config, got %d", opts.MaxConcurrent)
	}
}
