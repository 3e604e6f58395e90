//go:build bench
// +build bench

package codec

import (
	"strings"
	"testing"
)

func benchAccount(size int) account {
	hobbies := make([]string, size)
	counts := make(map[string]int, size)
	for i := range hobbies {
		hobbies[i] = strings.Repeat("h", i%16+1)
		counts[hobbies[i]] = i
	}
	a := sampleAccount()
	a.Hobbies = hobbies
	a.Counts = counts
	return a
}

func BenchmarkCodec_Marshal(b *testing.B) {
	c := New()

	benchmarks := []struct {
		name  string
		value account
	}{
		{
			name:  "small",
			value: sampleAccount(),
		},
		{
			name:  "medium",
			value: benchAccount(100),
		},
		{
			name:  "large",
			value: benchAccount(1000),
		},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, err := c.Marshal(bm.value)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCodec_Unmarshal(b *testing.B) {
	c := New()

	benchmarks := []struct {
		name  string
		value account
	}{
		{
			name:  "small",
			value: sampleAccount(),
		},
		{
			name:  "medium",
			value: benchAccount(100),
		},
		{
			name:  "large",
			value: benchAccount(1000),
		},
	}

	for _, bm := range benchmarks {
		encoded, err := c.Marshal(bm.value)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(bm.name, func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				var decoded account
				if err := c.Unmarshal(encoded, &decoded); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
