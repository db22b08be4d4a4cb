package helpers

import (
	"errors"
	"testing"
)

func TestSendAsyncRunsInlineWithoutDispatcher(t *testing.T) {
	SetDispatcher(nil)

	ran := false
	err := sendAsync(nil, "send.text", "sendMessage", func() error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("sendAsync: %v", err)
	}
	if !ran {
		t.Fatal("job must run synchronously when no dispatcher is wired")
	}
}

func TestSendAsyncPropagatesInlineError(t *testing.T) {
	SetDispatcher(nil)

	want := errors.New("chat not found")
	err := sendAsync(nil, "send.text", "sendMessage", func() error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}
