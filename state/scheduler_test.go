package state

import (
	"context"
	"testing"
	"time"
)

func newTestEnv(t *testing.T) (*Env, *State, chan func(*State) error) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	dispatchChan := make(chan func(*State) error, 10)
	env := &Env{
		DispatchChannel: dispatchChan,
		Context:         ctx,
		Cancel: func(err error) {
			cancel()
		},
	}
	return env, &State{Env: env}, dispatchChan
}

func TestDispatch(t *testing.T) {
	env, state, dispatchChan := newTestEnv(t)

	var called bool
	env.Dispatch(func(s *State) error {
		called = true
		return nil
	})

	select {
	case f := <-dispatchChan:
		if err := f(state); err != nil {
			t.Errorf("Dispatch error: %v", err)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timed out waiting for dispatched function")
	}

	if !called {
		t.Fatal("Dispatch function was not executed")
	}
}

func TestScheduleTask(t *testing.T) {
	env, state, dispatchChan := newTestEnv(t)

	var taskCalled bool
	env.ScheduleTask(func(s *State) error {
		taskCalled = true
		return nil
	}, 50*time.Millisecond)

	// Wait enough time for the scheduled task to be dispatched.
	time.Sleep(100 * time.Millisecond)
	select {
	case f := <-dispatchChan:
		if err := f(state); err != nil {
			t.Errorf("Scheduled task error: %v", err)
		}
	default:
		t.Fatal("No task was scheduled")
	}

	if !taskCalled {
		t.Fatal("Scheduled task was not executed")
	}
}

func TestScheduleTaskAfterCancel(t *testing.T) {
	env, _, dispatchChan := newTestEnv(t)
	env.Cancel(nil)

	env.ScheduleTask(func(s *State) error {
		return nil
	}, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	select {
	case <-dispatchChan:
		t.Fatal("Task was scheduled after context cancellation")
	default:
	}
}

func TestRepeatTask(t *testing.T) {
	env, state, dispatchChan := newTestEnv(t)

	var count int
	env.RepeatTask(func(s *State) error {
		count++
		if count >= 3 {
			env.Cancel(nil)
		}
		return nil
	}, 20*time.Millisecond)

	// Process the repeat tasks until context is cancelled.
loop:
	for {
		select {
		case f := <-dispatchChan:
			err := f(state)
			if err != nil {
				t.Fatalf("RepeatTask error: %v", err)
			}
			if count >= 3 {
				break loop
			}
		case <-env.Context.Done():
			break loop
		case <-time.After(500 * time.Millisecond):
			t.Fatal("Timed out waiting for RepeatTask to execute")
		}
	}
	if count != 3 {
		t.Fatalf("Expected 3 executions, got %d", count)
	}
}
