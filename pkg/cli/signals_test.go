package cli

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestSetupSignalHandler(t *testing.T) {
	ctx := SetupSignalHandler()

	// Context should not be cancelled initially
	select {
	case <-ctx.Done():
		t.Error("Context should not be cancelled initially")
	default:
		// Expected
	}

	// Context should have a Done channel
	if ctx.Done() == nil {
		t.Error("Context should have a Done channel")
	}
}

func TestSetupSignalHandlerCancellation(t *testing.T) {
	// This test verifies the signal handler mechanism
	// We'll use a separate goroutine to avoid actually sending signals
	ctx := SetupSignalHandler()

	// Verify context can be used
	select {
	case <-ctx.Done():
		t.Error("Context cancelled too early")
	case <-time.After(10 * time.Millisecond):
		// Expected - context should still be active
	}
}

func TestSetupSignalHandlerCancelsOnSignal(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping signal test in short mode")
	}

	ctx := SetupSignalHandler()

	p, _ := os.FindProcess(os.Getpid())
	_ = p.Signal(syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Error("context not cancelled after SIGTERM")
	}
}

func TestContextCancellationFlow(t *testing.T) {
	// Test that we can use the context in a typical server shutdown flow
	ctx := SetupSignalHandler()

	serverDone := make(chan bool)

	// Simulate server goroutine
	go func() {
		<-ctx.Done()
		serverDone <- true
	}()

	// Context should still be active
	select {
	case <-serverDone:
		t.Error("Server should not be done yet")
	case <-time.After(10 * time.Millisecond):
		// Expected
	}
}
