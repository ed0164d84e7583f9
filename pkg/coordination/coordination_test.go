package coordination

import (
	"context"
	"testing"

	"github.com/jllopis/substrate/pkg/errors"
)

func TestRegisterAgent(t *testing.T) {
	c := NewCoordinator()

	if err := c.RegisterAgent("worker-1", RoleWorker); err != nil {
		t.Fatalf("register: %v", err)
	}
	agent, ok := c.Agent("worker-1")
	if !ok || agent.Role != RoleWorker || !agent.Active {
		t.Errorf("unexpected agent: %+v", agent)
	}

	err := c.RegisterAgent("worker-1", RoleSpecialist)
	if err == nil {
		t.Fatal("duplicate registration must fail")
	}
	if !errors.IsCode(err, errors.CodeInvalidConfiguration) {
		t.Errorf("expected INVALID_CONFIGURATION, got %v", err)
	}
	// The existing agent is untouched.
	if agent, _ := c.Agent("worker-1"); agent.Role != RoleWorker {
		t.Errorf("failed registration mutated agent: %+v", agent)
	}
}

func TestUnregisterAgent(t *testing.T) {
	c := NewCoordinator()
	_ = c.RegisterAgent("a", RoleWorker)

	c.UnregisterAgent("a")
	if _, ok := c.Agent("a"); ok {
		t.Error("agent should be gone")
	}
	c.UnregisterAgent("a") // no-op
}

func TestRoundRobinAssignment(t *testing.T) {
	c := NewCoordinator()
	_ = c.RegisterAgent("a", RoleWorker)
	_ = c.RegisterAgent("b", RoleWorker)

	first, _ := c.Process(context.Background(), map[string]any{"task": "one"})
	second, _ := c.Process(context.Background(), map[string]any{"task": "two"})

	r1 := first.Content.(map[string]any)
	r2 := second.Content.(map[string]any)
	if r1["assigned_to"] != "a" || r2["assigned_to"] != "b" {
		t.Errorf("round robin order broken: %v then %v", r1["assigned_to"], r2["assigned_to"])
	}
	if r1["status"] != "assigned" {
		t.Errorf("status = %v", r1["status"])
	}
}

func TestCapabilityMatchAssignment(t *testing.T) {
	c := NewCoordinator()
	_ = c.RegisterAgent("generalist", RoleWorker)
	_ = c.RegisterAgent("db-expert", RoleSpecialist, "sql", "migrations")
	if err := c.SetStrategy(StrategyCapabilityMatch); err != nil {
		t.Fatalf("set strategy: %v", err)
	}

	th, _ := c.Process(context.Background(), map[string]any{
		"task":         "restore backup",
		"requirements": []string{"sql"},
	})
	result := th.Content.(map[string]any)
	if result["assigned_to"] != "db-expert" {
		t.Errorf("expected db-expert, got %v", result["assigned_to"])
	}

	// No capability overlap leaves the task unassigned.
	th, _ = c.Process(context.Background(), map[string]any{
		"task":         "paint the fence",
		"requirements": []string{"painting"},
	})
	result = th.Content.(map[string]any)
	if result["assigned_to"] != "" {
		t.Errorf("expected unassigned, got %v", result["assigned_to"])
	}
}

func TestBroadcast(t *testing.T) {
	c := NewCoordinator()
	_ = c.RegisterAgent("a", RoleWorker)
	_ = c.RegisterAgent("b", RoleObserver)
	c.SetAgentActive("b", false)

	th, err := c.Process(context.Background(), "status check")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	result := th.Content.(map[string]any)
	if result["agents_contacted"] != 1 {
		t.Errorf("only active agents contacted, got %v", result["agents_contacted"])
	}

	log := c.CommunicationLog()
	if len(log) != 1 || log[0].To != "a" || log[0].From != "coordinator" {
		t.Errorf("unexpected log: %+v", log)
	}
}

func TestConfidenceScaling(t *testing.T) {
	c := NewCoordinator()

	th, _ := c.Process(context.Background(), "anyone there")
	if th.Confidence != 0.3 {
		t.Errorf("confidence with no agents = %g, want 0.3", th.Confidence)
	}

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		_ = c.RegisterAgent(id, RoleWorker)
	}
	th, _ = c.Process(context.Background(), "hello")
	if th.Confidence != 0.9 {
		t.Errorf("confidence should cap at 0.9, got %g", th.Confidence)
	}
}

func TestSetStrategyValidation(t *testing.T) {
	c := NewCoordinator()
	err := c.SetStrategy(Strategy("chaos"))
	if !errors.IsCode(err, errors.CodeInvalidConfiguration) {
		t.Errorf("expected INVALID_CONFIGURATION, got %v", err)
	}
}

func TestPerformanceFeedback(t *testing.T) {
	c := NewCoordinator()
	_ = c.RegisterAgent("a", RoleWorker)

	if err := c.Update(context.Background(), map[string]any{
		"agent_id":    "a",
		"performance": 0.4,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if agent, _ := c.Agent("a"); agent.Performance != 0.4 {
		t.Errorf("performance = %g, want 0.4", agent.Performance)
	}

	if err := c.Update(context.Background(), map[string]any{"unrelated": true}); err != nil {
		t.Errorf("unknown feedback must not error: %v", err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	c := NewCoordinator()
	_ = c.RegisterAgent("a", RoleWorker)

	th, _ := c.Process(context.Background(), map[string]any{"task": "build", "id": "t-1"})
	result := th.Content.(map[string]any)
	if result["task_id"] != "t-1" {
		t.Fatalf("explicit id not used: %v", result["task_id"])
	}

	if pending := c.PendingTasks(); len(pending) != 1 {
		t.Errorf("expected 1 pending task, got %d", len(pending))
	}

	c.CompleteTask("t-1", "done")
	task, ok := c.Task("t-1")
	if !ok || !task.Completed || task.Result != "done" {
		t.Errorf("unexpected task: %+v", task)
	}
	if pending := c.PendingTasks(); len(pending) != 0 {
		t.Errorf("expected no pending tasks, got %d", len(pending))
	}
}
