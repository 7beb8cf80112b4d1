package errors

import (
	"fmt"
	"testing"
)

func BenchmarkErrorCreationExplicit(b *testing.B) {
	b.ReportAllocs()

	for b.Loop() {
		err := fmt.Errorf("test error")
		_ = New(err).
			Component("test").
			Category(CategoryGeneric).
			Build()
	}
}

func BenchmarkErrorCreationAutoDetect(b *testing.B) {
	b.ReportAllocs()

	for b.Loop() {
		err := fmt.Errorf("test error")
		_ = New(err).Build()
	}
}

func BenchmarkErrorCreationWithContext(b *testing.B) {
	b.ReportAllocs()

	for b.Loop() {
		err := fmt.Errorf("test error")
		_ = New(err).
			Component("test").
			Category(CategoryGeneric).
			Context("operation", "test_op").
			Context("count", 42).
			Build()
	}
}
