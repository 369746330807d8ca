package internal

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func failureMessage(t *testing.T, got, want interface{}) {
	t.Helper()
	t.Errorf("\nGot: %+v\nwant: %+v", got, want)
}

// AssertNoError stops the test on an unexpected error
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("Unexpected error: %s", err.Error())
	}
}

// AssertErrored stops the test if there is no error
func AssertErrored(t *testing.T, err error) {
	t.Helper()

	if err == nil {
		t.Fatal("Expected an error, but got nil")
	}
}

// AssertErrorIs checks the error chain contains target
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()

	if !errors.Is(err, target) {
		t.Errorf("got error %v, want %v", err, target)
	}
}

func AssertEqual(t *testing.T, got, want interface{}) {
	t.Helper()

	if got != want {
		failureMessage(t, got, want)
	}
}

func AssertDeepEqual(t *testing.T, got, want interface{}) {
	t.Helper()

	if !reflect.DeepEqual(got, want) {
		failureMessage(t, got, want)
	}
}

func AssertTrue(t *testing.T, got bool) {
	t.Helper()

	if !got {
		t.Error("Expected to be true, but it wasn't")
	}
}

// AssertNotNil fails for nil, including nil pointers held in an interface
func AssertNotNil(t *testing.T, got interface{}) {
	t.Helper()

	if got == nil {
		t.Error("Value is unexpectedly nil")
		return
	}
	if v := reflect.ValueOf(got); v.Kind() == reflect.Ptr && v.IsNil() {
		t.Errorf("%T is unexpectedly nil", got)
	}
}

// Within fails the test if assert has not returned after d
func Within(t *testing.T, d time.Duration, assert func()) {
	t.Helper()

	done := make(chan struct{}, 1)

	go func() {
		assert()
		done <- struct{}{}
	}()

	select {
	case <-time.After(d):
		t.Error("timed out")
	case <-done:
	}
}
