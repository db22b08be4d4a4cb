package middleware

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

// senderCtx stubs the one tele.Context method the admin gate reads.
type senderCtx struct {
	tele.Context
	user *tele.User
}

func (s senderCtx) Sender() *tele.User { return s.user }

func TestAdminOnlyMiddlewareAllowsAdmin(t *testing.T) {
	called := false
	h := AdminOnlyMiddleware(AdminOptions{AdminID: 7})(func(c tele.Context) error {
		called = true
		return nil
	})

	if err := h(senderCtx{user: &tele.User{ID: 7}}); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !called {
		t.Fatal("admin must reach the handler")
	}
}

func TestAdminOnlyMiddlewareRejectsOthers(t *testing.T) {
	rejected := false
	h := AdminOnlyMiddleware(AdminOptions{
		AdminID:  7,
		OnReject: func(c tele.Context) error { rejected = true; return nil },
	})(func(c tele.Context) error {
		t.Fatal("non-admin must not reach the handler")
		return nil
	})

	if err := h(senderCtx{user: &tele.User{ID: 8}}); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !rejected {
		t.Fatal("reject hook must fire")
	}
}

func TestAdminOnlyMiddlewareSilentWithoutRejectHook(t *testing.T) {
	h := AdminOnlyMiddleware(AdminOptions{AdminID: 7})(func(c tele.Context) error {
		t.Fatal("non-admin must not reach the handler")
		return nil
	})

	if err := h(senderCtx{user: &tele.User{ID: 8}}); err != nil {
		t.Fatalf("handler: %v", err)
	}
}

func TestAdminOnlyMiddlewareOpenWhenUnconfigured(t *testing.T) {
	called := false
	h := AdminOnlyMiddleware(AdminOptions{})(func(c tele.Context) error {
		called = true
		return nil
	})

	if err := h(senderCtx{user: &tele.User{ID: 8}}); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !called {
		t.Fatal("zero admin id must leave the gate open")
	}
}
