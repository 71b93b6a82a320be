package driver

// Spring is a deterministic damped harmonic oscillator integrated with
// fourth-order Runge-Kutta. Given the same position, velocity and step it
// always produces the same result.
type Spring struct {
	Stiffness float64
	Damping   float64
	Mass      float64
	Target    float64

	position float64
	velocity float64
}

// NewSpring returns a spring at position moving with velocity.
func NewSpring(stiffness, damping, mass, target, position, velocity float64) *Spring {
	if mass <= 0 {
		mass = 1
	}
	return &Spring{
		Stiffness: stiffness,
		Damping:   damping,
		Mass:      mass,
		Target:    target,
		position:  position,
		velocity:  velocity,
	}
}

// Position returns the current position.
func (s *Spring) Position() float64 { return s.position }

// Velocity returns the current velocity in units per second.
func (s *Spring) Velocity() float64 { return s.velocity }

// Set overrides the state, e.g. to snap the spring to rest.
func (s *Spring) Set(position, velocity float64) {
	s.position = position
	s.velocity = velocity
}

// Step advances the simulation by dt seconds using one RK4 step.
func (s *Spring) Step(dt float64) {
	x, v := s.position, s.velocity

	av, aa := v, s.accel(x, v)

	bx := x + av*dt*0.5
	bv := v + aa*dt*0.5
	ba := s.accel(bx, bv)

	cx := x + bv*dt*0.5
	cv := v + ba*dt*0.5
	ca := s.accel(cx, cv)

	dx := x + cv*dt
	dv := v + ca*dt
	da := s.accel(dx, dv)

	dxdt := (av + 2*(bv+cv) + dv) / 6
	dvdt := (aa + 2*(ba+ca) + da) / 6

	s.position = x + dxdt*dt
	s.velocity = v + dvdt*dt
}

func (s *Spring) accel(x, v float64) float64 {
	return (s.Stiffness*(s.Target-x) - s.Damping*v) / s.Mass
}
