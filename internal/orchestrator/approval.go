package orchestrator

import (
	"context"
	"sync"
)

// Approver decides whether a phase may run. It may block on a human.
type Approver interface {
	Approve(ctx context.Context, phaseDescription string) (bool, error)
}

// ApproverFunc adapts a function to Approver.
type ApproverFunc func(ctx context.Context, phaseDescription string) (bool, error)

// Approve calls f.
func (f ApproverFunc) Approve(ctx context.Context, phaseDescription string) (bool, error) {
	return f(ctx, phaseDescription)
}

// AutoApprover always answers Answer. The zero value declines, so use
// AlwaysApprove for non-interactive runs.
type AutoApprover struct {
	Answer bool
}

// Approve returns the fixed answer.
func (a AutoApprover) Approve(ctx context.Context, phaseDescription string) (bool, error) {
	return a.Answer, nil
}

// AlwaysApprove approves every phase.
var AlwaysApprove Approver = AutoApprover{Answer: true}

// ApprovalRequest asks a front end to approve a phase.
type ApprovalRequest struct {
	// ID correlates the request with its response.
	ID int
	// Phase is the phase description.
	Phase string
}

// ApprovalResponse is the front end's answer to an ApprovalRequest.
type ApprovalResponse struct {
	ID       int
	Approved bool
}

// ApprovalManager is an Approver that forwards requests over a channel to a
// front end (such as the TUI) and blocks until it answers.
type ApprovalManager struct {
	mu      sync.Mutex
	nextID  int
	pending map[int]chan ApprovalResponse

	requestCh chan ApprovalRequest
}

// NewApprovalManager creates an ApprovalManager.
func NewApprovalManager() *ApprovalManager {
	return &ApprovalManager{
		pending:   make(map[int]chan ApprovalResponse),
		requestCh: make(chan ApprovalRequest, 10),
	}
}

// RequestCh returns the channel the front end should read requests from.
func (m *ApprovalManager) RequestCh() <-chan ApprovalRequest {
	return m.requestCh
}

// Approve sends a request and waits for the matching response.
func (m *ApprovalManager) Approve(ctx context.Context, phaseDescription string) (bool, error) {
	responseCh := make(chan ApprovalResponse, 1)

	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.pending[id] = responseCh
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
	}()

	select {
	case m.requestCh <- ApprovalRequest{ID: id, Phase: phaseDescription}:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case resp := <-responseCh:
		return resp.Approved, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// SubmitResponse delivers the front end's answer. Unknown or already
// answered IDs are ignored.
func (m *ApprovalManager) SubmitResponse(resp ApprovalResponse) {
	m.mu.Lock()
	ch, exists := m.pending[resp.ID]
	m.mu.Unlock()

	if exists {
		select {
		case ch <- resp:
		default:
		}
	}
}

// HasPending returns true if the request with id is still waiting.
func (m *ApprovalManager) HasPending(id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.pending[id]
	return exists
}
