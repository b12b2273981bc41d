package system

import (
	"math/rand/v2"

	"github.com/milk9111/dronecore/ecs/component"
	"github.com/rs/zerolog"
)

// Controller drives one agent per tick.
type Controller interface {
	Bind(agent component.Agent)
	Agent() component.Agent
	Update(dt float64)
}

const (
	retargetIntervalIdle    = 40
	retargetIntervalTracked = 90
	coreSearchInterval      = 60
)

// capabilities are resolved once at bind time so the tick never type-checks
// the agent.
type capabilities struct {
	typ     *component.AgentType
	payload component.PayloadCarrier
	wobbler component.Wobbler
}

func resolveCapabilities(a component.Agent) capabilities {
	caps := capabilities{typ: a.Type()}
	caps.payload, _ = a.(component.PayloadCarrier)
	caps.wobbler, _ = a.(component.Wobbler)
	return caps
}

// AIController couples target acquisition, weapon aiming, steering and the
// repair task for a single agent.
type AIController struct {
	env   Env
	hooks Hooks
	base  zerolog.Logger
	log   zerolog.Logger
	rng   *rand.Rand

	agent component.Agent
	caps  capabilities

	timers       component.TimerSet
	target       component.Target
	bomberTarget component.Target
	noTargetTime float64

	task              component.RepairTask
	discoveryAttempts int
}

type Option func(*AIController)

func WithHooks(h Hooks) Option {
	return func(c *AIController) {
		if h != nil {
			c.hooks = h
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *AIController) {
		c.base = log
		c.log = log
	}
}

func WithRand(r *rand.Rand) Option {
	return func(c *AIController) {
		if r != nil {
			c.rng = r
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(c *AIController) {
		c.rng = newRand(seed)
	}
}

func NewAIController(env Env, opts ...Option) *AIController {
	c := &AIController{
		env:   env,
		hooks: BaseHooks{},
		base:  zerolog.Nop(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return c
}

// Bind attaches the controller to agent. Rebinding to the same agent is a
// no-op. A new agent drops every combat target and restarts the interval
// timers with a random phase so that a squad does not retarget in lockstep.
// The repair task survives the rebind and its current state is reported
// again for the new agent.
func (c *AIController) Bind(agent component.Agent) {
	if agent == nil || c.agent == agent {
		return
	}

	c.agent = agent
	c.caps = resolveCapabilities(agent)
	c.target = component.NoTarget
	c.bomberTarget = component.NoTarget
	c.noTargetTime = 0

	c.timers = component.TimerSet{}
	c.timers.Reset(component.TimerTarget, c.rng.Float64()*retargetIntervalIdle)
	c.timers.Reset(component.TimerCoreSearch, c.rng.Float64()*coreSearchInterval)

	c.log = c.base.With().Int("agent", agent.ID()).Logger()

	c.task.Logged = false
	c.transition(c.task.State)
}

func (c *AIController) Agent() component.Agent {
	return c.agent
}

func (c *AIController) Type() *component.AgentType {
	return c.caps.typ
}

// Update runs one tick: the repair task first, then visuals, then combat
// targeting, then the strategy's movement.
func (c *AIController) Update(dt float64) {
	if c.agent == nil {
		return
	}

	c.timers.Advance(dt)

	c.updateTask(dt)
	c.UpdateVisuals()
	c.updateTargeting(dt)

	if c.movementAllowed() {
		c.hooks.UpdateMovement(c)
	}
}

// movementAllowed reports whether the strategy may steer. The repair task
// owns steering while it is moving to or working on a structure.
func (c *AIController) movementAllowed() bool {
	return c.task.State != component.StateMoving && c.task.State != component.StateRepairing
}

func (c *AIController) State() component.DroneState {
	return c.task.State
}

func (c *AIController) Task() component.RepairTask {
	return c.task
}

// DiscoveryAttempts counts the random rescans made while idle.
func (c *AIController) DiscoveryAttempts() int {
	return c.discoveryAttempts
}

func (c *AIController) Target() component.Target {
	return c.target
}

func (c *AIController) SetTarget(t component.Target) {
	c.target = t
}

func (c *AIController) BomberTarget() component.Target {
	return c.bomberTarget
}

func (c *AIController) NoTargetTime() float64 {
	return c.noTargetTime
}

func (c *AIController) Timers() *component.TimerSet {
	return &c.timers
}

func (c *AIController) Logger() zerolog.Logger {
	return c.log
}

// ForceState moves the task to s and always reports it, even when s is the
// current state.
func (c *AIController) ForceState(s component.DroneState) {
	c.task.Logged = false
	c.transition(s)
}

func (c *AIController) agentID() int {
	if c.agent == nil {
		return -1
	}
	return c.agent.ID()
}
