package bridge

import "testing"

func TestRecordResolveRoundTrip(t *testing.T) {
	b := New(0)
	b.Record(-100, 55, 777)

	sender, ok := b.Resolve(-100, 55)
	if !ok || sender != 777 {
		t.Fatalf("Resolve = (%d, %v), want (777, true)", sender, ok)
	}

	// Entries are read, not consumed.
	if _, ok := b.Resolve(-100, 55); !ok {
		t.Fatalf("entry consumed by Resolve")
	}
}

func TestResolveUnknownKey(t *testing.T) {
	b := New(0)
	b.Record(-100, 55, 777)

	if _, ok := b.Resolve(-100, 56); ok {
		t.Fatalf("resolved unrecorded message id")
	}
	if _, ok := b.Resolve(-101, 55); ok {
		t.Fatalf("resolved wrong chat id")
	}
}

func TestRecordOverwrites(t *testing.T) {
	b := New(0)
	b.Record(-100, 55, 777)
	b.Record(-100, 55, 888)

	sender, _ := b.Resolve(-100, 55)
	if sender != 888 {
		t.Fatalf("sender = %d after overwrite, want 888", sender)
	}
	if b.Len() != 1 {
		t.Fatalf("overwrite must not grow the bridge, len = %d", b.Len())
	}
}

func TestEvictionOldestFirst(t *testing.T) {
	b := New(3)
	for i := int64(1); i <= 4; i++ {
		b.Record(-100, i, 700+i)
	}

	if b.Len() != 3 {
		t.Fatalf("len = %d, want 3", b.Len())
	}
	if _, ok := b.Resolve(-100, 1); ok {
		t.Fatalf("oldest entry should have been evicted")
	}
	for i := int64(2); i <= 4; i++ {
		if sender, ok := b.Resolve(-100, i); !ok || sender != 700+i {
			t.Fatalf("entry %d missing after eviction", i)
		}
	}
}

func TestConcurrentRecordResolve(t *testing.T) {
	b := New(128)
	done := make(chan struct{})
	for w := 0; w < 8; w++ {
		go func(w int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				b.Record(int64(w), int64(i), int64(w*1000+i))
				b.Resolve(int64(w), int64(i))
			}
		}(w)
	}
	for w := 0; w < 8; w++ {
		<-done
	}
	if b.Len() > 128 {
		t.Fatalf("bridge exceeded its bound: %d", b.Len())
	}
}
