package breaker

import (
	"testing"
	"time"
)

// BenchmarkBreaker_Admit_Closed measures the happy-path admission check.
func BenchmarkBreaker_Admit_Closed(b *testing.B) {
	br := New(Config{ResetTimeout: time.Minute})
	br.ReportSuccess("api")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = br.Admit("api")
	}
}

// BenchmarkBreaker_ReportSuccess measures recording one outcome.
func BenchmarkBreaker_ReportSuccess(b *testing.B) {
	br := New(Config{ResetTimeout: time.Minute})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		br.ReportSuccess("api")
	}
}

// BenchmarkBreaker_Stats measures statistics retrieval.
func BenchmarkBreaker_Stats(b *testing.B) {
	br := New(Config{ResetTimeout: time.Minute})
	for i := 0; i < 50; i++ {
		br.ReportSuccess("api")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = br.Stats("api")
	}
}

// BenchmarkBreaker_Concurrent measures parallel admit/report cycles.
func BenchmarkBreaker_Concurrent(b *testing.B) {
	br := New(Config{ResetTimeout: time.Minute})

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := br.Admit("api"); err == nil {
				br.ReportSuccess("api")
			}
		}
	})
}

// BenchmarkState_String measures state string conversion.
func BenchmarkState_String(b *testing.B) {
	states := []State{StateClosed, StateOpen, StateHalfOpen}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = states[i%3].String()
	}
}
