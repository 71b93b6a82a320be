package driver

import (
	"errors"
	"fmt"
	"math"

	"github.com/vk/animgraph/internal/node"
)

// ErrTimeWentBackwards is an invariant violation: the frame clock delivered a
// timestamp earlier than the one the driver started at.
var ErrTimeWentBackwards = errors.New("frame time went backwards")

const (
	// framesPerSecond is the sampling rate of frame tables.
	framesPerSecond = 60
	// maxSpringStepMillis caps the simulated time per frame after a stall.
	maxSpringStepMillis = 64
	// springSolverStep is the RK4 substep in seconds.
	springSolverStep = 0.001
)

// State is the lifecycle position of a driver.
type State int

const (
	NotStarted State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// CompletionFunc is invoked exactly once when a driver ends. finished is true
// when the animation ran to completion.
type CompletionFunc func(finished bool)

// Driver mutates one Value node per frame until it finishes.
type Driver struct {
	// Target is the Value node the driver writes to.
	Target *node.Node

	stepper    stepper
	state      State
	onComplete CompletionFunc
	completed  bool
}

type stepper interface {
	// step returns the value for frameNanos given the target's current value,
	// and whether the animation is done.
	step(frameNanos int64, current float64) (float64, bool, error)
}

// New creates a driver for target. The target must be a Value node.
func New(target *node.Node, cfg Config, onComplete CompletionFunc) (*Driver, error) {
	if target == nil || target.Kind != node.KindValue {
		return nil, fmt.Errorf("%w: animated node must be a value node", ErrInvalidConfig)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: missing animation config", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var s stepper
	switch c := cfg.(type) {
	case FramesConfig:
		s = newFramesStepper(c)
	case SpringConfig:
		s = newSpringStepper(c)
	default:
		return nil, fmt.Errorf("%w: unsupported animation type %q", ErrInvalidConfig, cfg.Type())
	}

	return &Driver{
		Target:     target,
		stepper:    s,
		onComplete: onComplete,
	}, nil
}

// State returns the driver's lifecycle state.
func (d *Driver) State() State {
	return d.state
}

// Step advances the driver to frameNanos and writes the new value into the
// target. Stepping a finished driver does nothing.
func (d *Driver) Step(frameNanos int64) error {
	if d.state == Finished {
		return nil
	}
	v, done, err := d.stepper.step(frameNanos, d.Target.Value)
	if err != nil {
		return err
	}
	d.state = Running
	d.Target.Value = v
	if done {
		d.state = Finished
	}
	return nil
}

// Stop ends the driver without running it to completion.
func (d *Driver) Stop() {
	d.state = Finished
}

// Complete fires the completion callback once; later calls are ignored.
func (d *Driver) Complete(finished bool) {
	if d.completed {
		return
	}
	d.completed = true
	d.state = Finished
	if d.onComplete != nil {
		d.onComplete(finished)
	}
}

// Completed reports whether the completion callback has fired.
func (d *Driver) Completed() bool {
	return d.completed
}

type framesStepper struct {
	frames  []float64
	toValue float64
	hasTo   bool

	started    bool
	startNanos int64
	fromValue  float64
}

func newFramesStepper(c FramesConfig) *framesStepper {
	s := &framesStepper{frames: c.Frames}
	if c.ToValue != nil {
		s.hasTo = true
		s.toValue = *c.ToValue
	}
	return s
}

func (s *framesStepper) step(frameNanos int64, current float64) (float64, bool, error) {
	if !s.started {
		s.started = true
		s.startNanos = frameNanos
		s.fromValue = current
	}
	elapsedMillis := (frameNanos - s.startNanos) / 1_000_000
	index := int(elapsedMillis * framesPerSecond / 1000)
	if index < 0 {
		return current, false, fmt.Errorf("%w: frame index %d", ErrTimeWentBackwards, index)
	}

	last := len(s.frames) - 1
	if index >= last {
		if s.hasTo {
			return s.toValue, true, nil
		}
		return s.fromValue + s.frames[last], true, nil
	}
	if s.hasTo {
		return s.fromValue + s.frames[index]*(s.toValue-s.fromValue), false, nil
	}
	return s.fromValue + s.frames[index], false, nil
}

type springStepper struct {
	cfg SpringConfig

	started    bool
	lastMillis int64
	startValue float64
	spring     *Spring
}

func newSpringStepper(c SpringConfig) *springStepper {
	return &springStepper{cfg: c.WithDefaults()}
}

func (s *springStepper) step(frameNanos int64, current float64) (float64, bool, error) {
	nowMillis := frameNanos / 1_000_000
	if !s.started {
		s.started = true
		s.lastMillis = nowMillis
		s.startValue = current
		s.spring = NewSpring(s.cfg.Tension, s.cfg.Friction, s.cfg.Mass, s.cfg.ToValue, current, s.cfg.Velocity)
	}

	dt := nowMillis - s.lastMillis
	if dt < 0 {
		return current, false, fmt.Errorf("%w: %dms before the previous frame", ErrTimeWentBackwards, -dt)
	}
	s.lastMillis = nowMillis
	if dt > maxSpringStepMillis {
		dt = maxSpringStepMillis
	}
	for range dt {
		s.spring.Step(springSolverStep)
	}

	if s.atRest() || s.overshooting() {
		if s.cfg.Tension > 0 {
			s.spring.Set(s.cfg.ToValue, 0)
		} else {
			s.spring.Set(s.spring.Position(), 0)
		}
		return s.spring.Position(), true, nil
	}
	return s.spring.Position(), false, nil
}

func (s *springStepper) atRest() bool {
	if math.Abs(s.spring.Velocity()) > s.cfg.RestSpeedThreshold {
		return false
	}
	if s.cfg.Tension == 0 {
		return true
	}
	return math.Abs(s.cfg.ToValue-s.spring.Position()) <= s.cfg.RestDisplacementThreshold
}

func (s *springStepper) overshooting() bool {
	if !s.cfg.OvershootClamping || s.cfg.Tension == 0 {
		return false
	}
	pos, to := s.spring.Position(), s.cfg.ToValue
	return (s.startValue < to && pos > to) || (s.startValue > to && pos < to)
}
