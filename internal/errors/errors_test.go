package errors

import (
	"fmt"
	"testing"
)

func TestBuildDefaultsComponentAndCategory(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("test error")
	ee := New(err).Build()

	if ee.Err.Error() != "test error" {
		t.Errorf("expected error message 'test error', got '%s'", ee.Err.Error())
	}

	if ee.GetComponent() == "" {
		t.Errorf("expected Build to fall back to a detected component, got empty")
	}

	if ee.Category == "" {
		t.Errorf("expected Build to fall back to a detected category, got empty")
	}
}

func TestBuildHonorsExplicitComponentAndCategory(t *testing.T) {
	t.Parallel()

	ee := New(fmt.Errorf("boom")).
		Component("spectrum").
		Category(CategoryFileParsing).
		Build()

	if ee.GetComponent() != "spectrum" {
		t.Errorf("expected explicit component to stick, got '%s'", ee.GetComponent())
	}
	if ee.Category != CategoryFileParsing {
		t.Errorf("expected explicit category to stick, got '%s'", ee.Category)
	}
}

func TestDetectCategorySerialHeuristic(t *testing.T) {
	t.Parallel()

	ee := New(fmt.Errorf("serial port write failed")).Build()
	if ee.Category != CategorySerialIO {
		t.Errorf("expected serial-io category, got '%s'", ee.Category)
	}
}

func TestDetectCategoryNotFoundHeuristic(t *testing.T) {
	t.Parallel()

	ee := New(fmt.Errorf("config file does not exist")).Build()
	if ee.Category != CategoryFileIO && ee.Category != CategoryNotFound {
		t.Errorf("expected file-io or not-found category, got '%s'", ee.Category)
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	ee := New(fmt.Errorf("missing")).Category(CategoryNotFound).Build()
	if !IsNotFound(ee) {
		t.Errorf("expected IsNotFound to report true for CategoryNotFound error")
	}
}

func TestWrapPreservesUnderlyingError(t *testing.T) {
	t.Parallel()

	base := fmt.Errorf("underlying")
	ee := Wrap(base).Build()
	if ee.Unwrap() != base {
		t.Errorf("expected Unwrap to return the original error")
	}
}
