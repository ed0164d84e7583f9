// Package coordination provides the multi-agent coordination module of the
// substrate.
package coordination

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jllopis/substrate/pkg/core"
	"github.com/jllopis/substrate/pkg/errors"
)

// Role classifies what an agent does in the system.
type Role string

const (
	RoleCoordinator Role = "coordinator"
	RoleWorker      Role = "worker"
	RoleSpecialist  Role = "specialist"
	RoleObserver    Role = "observer"
)

// Strategy selects how tasks are assigned to agents.
type Strategy string

const (
	StrategyRoundRobin      Strategy = "round_robin"
	StrategyCapabilityMatch Strategy = "capability_match"
)

// Agent is a participant the coordinator can assign work to.
type Agent struct {
	ID           string
	Role         Role
	Capabilities []string
	Active       bool
	Performance  float64
}

// Task is a unit of work routed to an agent.
type Task struct {
	ID           string
	Description  string
	Requirements []string
	AssignedTo   string
	Completed    bool
	Result       any
}

// Message is one entry in the coordinator's communication log.
type Message struct {
	Timestamp time.Time
	From      string
	To        string
	Content   any
}

// Coordinator routes tasks and broadcasts to registered agents. It
// implements core.Module.
type Coordinator struct {
	name string

	mu       sync.Mutex
	state    core.CognitiveState
	strategy Strategy
	agents   map[string]*Agent
	order    []string
	tasks    map[string]*Task
	log      []Message

	logger *slog.Logger
}

var _ core.Module = (*Coordinator)(nil)

// NewCoordinator creates a coordinator using round-robin assignment.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		name:     "AgentCoordinator",
		state:    core.StateIdle,
		strategy: StrategyRoundRobin,
		agents:   make(map[string]*Agent),
		tasks:    make(map[string]*Task),
		logger:   slog.Default().With("module", "AgentCoordinator"),
	}
}

// Name implements core.Module.
func (c *Coordinator) Name() string { return c.name }

// State implements core.Module.
func (c *Coordinator) State() core.CognitiveState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetStrategy switches the assignment strategy. Unknown strategies are
// rejected with an invalid-configuration error and nothing changes.
func (c *Coordinator) SetStrategy(strategy Strategy) error {
	switch strategy {
	case StrategyRoundRobin, StrategyCapabilityMatch:
	default:
		return errors.Newf(errors.CodeInvalidConfiguration, "unknown strategy: %s", strategy)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strategy = strategy
	return nil
}

// RegisterAgent adds an agent. Registering an id twice is rejected with an
// invalid-configuration error and the existing agent is untouched.
func (c *Coordinator) RegisterAgent(id string, role Role, capabilities ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.agents[id]; exists {
		return errors.Newf(errors.CodeInvalidConfiguration, "agent %s already registered", id)
	}
	c.agents[id] = &Agent{
		ID:           id,
		Role:         role,
		Capabilities: capabilities,
		Active:       true,
		Performance:  1.0,
	}
	c.order = append(c.order, id)
	return nil
}

// UnregisterAgent removes an agent. Unknown ids are a no-op.
func (c *Coordinator) UnregisterAgent(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.agents[id]; !exists {
		return
	}
	delete(c.agents, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// SetAgentActive flips an agent's availability. Unknown ids are a no-op.
func (c *Coordinator) SetAgentActive(id string, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if agent, ok := c.agents[id]; ok {
		agent.Active = active
	}
}

// Agent returns a copy of the agent with the given id.
func (c *Coordinator) Agent(id string) (Agent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	agent, ok := c.agents[id]
	if !ok {
		return Agent{}, false
	}
	return *agent, true
}

// ActiveAgents returns copies of all active agents in registration order.
func (c *Coordinator) ActiveAgents() []Agent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeLocked()
}

func (c *Coordinator) activeLocked() []Agent {
	var out []Agent
	for _, id := range c.order {
		if agent := c.agents[id]; agent.Active {
			out = append(out, *agent)
		}
	}
	return out
}

// Process handles a coordination request. A map input carrying a "task" key
// creates and assigns a task; anything else is broadcast to the active
// agents.
func (c *Coordinator) Process(ctx context.Context, input any) (core.Thought, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = core.StateCoordinating
	defer func() { c.state = core.StateIdle }()

	var result map[string]any
	if req, ok := input.(map[string]any); ok {
		if _, hasTask := req["task"]; hasTask {
			result = c.handleTaskLocked(req)
		}
	}
	if result == nil {
		result = c.broadcastLocked(input)
	}

	meta := map[string]any{"strategy": string(c.strategy)}
	return core.NewThought(result, c.confidenceLocked(), c.name, meta), nil
}

// handleTaskLocked creates a task from the request and assigns it.
func (c *Coordinator) handleTaskLocked(req map[string]any) map[string]any {
	task := &Task{
		ID:          uuid.New().String(),
		Description: fmt.Sprintf("%v", req["task"]),
	}
	if id, ok := req["id"].(string); ok && id != "" {
		task.ID = id
	}
	if reqs, ok := req["requirements"].([]string); ok {
		task.Requirements = reqs
	}

	assigned := c.assignLocked(task)
	c.tasks[task.ID] = task

	return map[string]any{
		"task_id":     task.ID,
		"assigned_to": assigned,
		"status":      "assigned",
	}
}

// assignLocked picks an agent for the task per the active strategy and
// returns its id, or "" when no agent qualifies.
func (c *Coordinator) assignLocked(task *Task) string {
	switch c.strategy {
	case StrategyRoundRobin:
		active := c.activeLocked()
		if len(active) == 0 {
			return ""
		}
		agent := active[len(c.tasks)%len(active)]
		task.AssignedTo = agent.ID
		return agent.ID

	case StrategyCapabilityMatch:
		bestScore := 0
		bestID := ""
		for _, id := range c.order {
			agent := c.agents[id]
			if !agent.Active {
				continue
			}
			score := 0
			for _, req := range task.Requirements {
				for _, capability := range agent.Capabilities {
					if capability == req {
						score++
						break
					}
				}
			}
			if score > bestScore {
				bestScore = score
				bestID = id
			}
		}
		if bestID != "" {
			task.AssignedTo = bestID
		}
		return bestID
	}
	return ""
}

// broadcastLocked sends input to every active agent and logs the exchange.
func (c *Coordinator) broadcastLocked(input any) map[string]any {
	var responses []map[string]any
	for _, agent := range c.activeLocked() {
		responses = append(responses, map[string]any{
			"agent_id": agent.ID,
			"role":     string(agent.Role),
			"response": fmt.Sprintf("Processing: %v", input),
		})
		c.log = append(c.log, Message{
			Timestamp: time.Now().UTC(),
			From:      "coordinator",
			To:        agent.ID,
			Content:   input,
		})
	}
	return map[string]any{
		"input":            input,
		"agents_contacted": len(responses),
		"responses":        responses,
	}
}

// confidenceLocked grows with the number of active agents, capped at 0.9.
func (c *Coordinator) confidenceLocked() float64 {
	if len(c.agents) == 0 {
		return 0.3
	}
	confidence := 0.5 + float64(len(c.activeLocked()))*0.1
	if confidence > 0.9 {
		confidence = 0.9
	}
	return confidence
}

// Update applies agent performance feedback. Unknown keys are ignored.
func (c *Coordinator) Update(ctx context.Context, feedback map[string]any) error {
	id, ok := feedback["agent_id"].(string)
	if !ok {
		return nil
	}
	performance, ok := toFloat(feedback["performance"])
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if agent, exists := c.agents[id]; exists {
		agent.Performance = performance
	}
	return nil
}

// CompleteTask marks a task completed with its result. Unknown ids are a
// no-op.
func (c *Coordinator) CompleteTask(taskID string, result any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if task, ok := c.tasks[taskID]; ok {
		task.Completed = true
		task.Result = result
	}
}

// Task returns a copy of the task with the given id.
func (c *Coordinator) Task(taskID string) (Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	task, ok := c.tasks[taskID]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

// PendingTasks returns copies of all uncompleted tasks.
func (c *Coordinator) PendingTasks() []Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Task
	for _, task := range c.tasks {
		if !task.Completed {
			out = append(out, *task)
		}
	}
	return out
}

// CommunicationLog returns a copy of the message log.
func (c *Coordinator) CommunicationLog() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.log))
	copy(out, c.log)
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
