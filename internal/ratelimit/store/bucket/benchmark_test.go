package bucket

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func BenchmarkAllow_SingleIP(b *testing.B) {
	store := New()
	ctx := context.Background()

	for b.Loop() {
		_, _ = store.Allow(ctx, "rl:verify:ip:203.0.113.7", 1000, time.Minute)
	}
}

func BenchmarkAllow_ManyIPs_Parallel(b *testing.B) {
	store := New()
	ctx := context.Background()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("rl:verify:ip:10.0.%d.%d", (i/256)%256, i%256)
			_, _ = store.Allow(ctx, key, 30, time.Minute)
			i++
		}
	})
}
