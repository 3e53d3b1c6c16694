// Package tui renders mastercoder's terminal output.
//
// Report draws static blocks (analysis, plan, result, stats, history) with
// lipgloss. PhaseView is a bubbletea model that follows a running plan by
// consuming orchestrator events until the emitter is closed:
//
//	emitter := orchestrator.NewEventEmitter(100)
//	view := tui.NewPhaseView(task, emitter.Events(), approvals, cancel)
//	program := tui.NewPhaseProgram(view)
//	go func() {
//		report, err = coordinator.Execute(ctx, planned)
//		emitter.Close()
//	}()
//	_, _ = program.Run()
//
// ConfirmApprover asks before gated phases when no PhaseView is running.
package tui
