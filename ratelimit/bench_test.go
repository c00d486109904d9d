package ratelimit

import (
	"testing"
)

// BenchmarkTokenBucket_Allow measures single token checks.
func BenchmarkTokenBucket_Allow(b *testing.B) {
	tb := NewTokenBucket(TokenBucketConfig{
		Capacity:   1000000, // Very high capacity to avoid denials
		RefillRate: 1000000,
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tb.Allow("api")
	}
}

// BenchmarkTokenBucket_AllowN measures batch token checks.
func BenchmarkTokenBucket_AllowN(b *testing.B) {
	tb := NewTokenBucket(TokenBucketConfig{
		Capacity:   1000000,
		RefillRate: 1000000,
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tb.AllowN("api", 10)
	}
}

// BenchmarkTokenBucket_Concurrent measures parallel token checks.
func BenchmarkTokenBucket_Concurrent(b *testing.B) {
	tb := NewTokenBucket(TokenBucketConfig{
		Capacity:   1000000,
		RefillRate: 1000000,
	})

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = tb.Allow("api")
		}
	})
}

// BenchmarkSlidingWindow_Allow measures single window checks.
func BenchmarkSlidingWindow_Allow(b *testing.B) {
	sw := NewSlidingWindow(SlidingWindowConfig{
		MaxRequests: 1000000,
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = sw.Allow("api")
	}
}

// BenchmarkSlidingWindow_Concurrent measures parallel window checks.
func BenchmarkSlidingWindow_Concurrent(b *testing.B) {
	sw := NewSlidingWindow(SlidingWindowConfig{
		MaxRequests: 1000000,
	})

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = sw.Allow("api")
		}
	})
}
