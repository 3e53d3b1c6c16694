package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAutoApprover(t *testing.T) {
	ok, err := AlwaysApprove.Approve(context.Background(), "Phase 1")
	if err != nil || !ok {
		t.Errorf("AlwaysApprove = (%v, %v), want (true, nil)", ok, err)
	}

	var zero AutoApprover
	ok, err = zero.Approve(context.Background(), "Phase 1")
	if err != nil || ok {
		t.Errorf("zero AutoApprover = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestApprovalManager_RoundTrip(t *testing.T) {
	manager := NewApprovalManager()

	go func() {
		req := <-manager.RequestCh()
		if req.Phase != "Phase 2 (parallel execution)" {
			t.Errorf("unexpected phase %q", req.Phase)
		}
		if !manager.HasPending(req.ID) {
			t.Error("expected request to be pending")
		}
		manager.SubmitResponse(ApprovalResponse{ID: req.ID, Approved: true})
	}()

	ok, err := manager.Approve(context.Background(), "Phase 2 (parallel execution)")
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	if !ok {
		t.Error("expected approval")
	}
}

func TestApprovalManager_Decline(t *testing.T) {
	manager := NewApprovalManager()

	go func() {
		req := <-manager.RequestCh()
		manager.SubmitResponse(ApprovalResponse{ID: req.ID, Approved: false})
	}()

	ok, err := manager.Approve(context.Background(), "Phase 1")
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	if ok {
		t.Error("expected decline")
	}
}

func TestApprovalManager_ContextCancelled(t *testing.T) {
	manager := NewApprovalManager()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Nobody answers.
	ok, err := manager.Approve(ctx, "Phase 1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
	if ok {
		t.Error("expected no approval on cancellation")
	}

	req := <-manager.RequestCh()
	if manager.HasPending(req.ID) {
		t.Error("expected cancelled request to be cleared")
	}
}

func TestApprovalManager_UnknownResponseIgnored(t *testing.T) {
	manager := NewApprovalManager()
	// Must not panic or block.
	manager.SubmitResponse(ApprovalResponse{ID: 42, Approved: true})
	if manager.HasPending(42) {
		t.Error("unknown ID should not be pending")
	}
}
