package component

// DefaultButtonThreshold is used when ButtonState.Threshold is not positive.
const DefaultButtonThreshold = 0.5

// ButtonState turns an analog axis into a digital button with edges and a
// held timer.
type ButtonState struct {
	Threshold float64

	analog    float64
	active    bool
	wasActive bool
	heldTime  float64
}

func NewButtonState(threshold float64) ButtonState {
	return ButtonState{Threshold: threshold}
}

// Update samples the analog value for this frame.
func (b *ButtonState) Update(analog, dt float64) {
	b.wasActive = b.active
	b.analog = analog
	b.active = analog >= b.threshold()
	if b.active && b.wasActive {
		b.heldTime += dt
	} else {
		b.heldTime = 0
	}
}

func (b *ButtonState) IsActive() bool    { return b.active }
func (b *ButtonState) Began() bool       { return b.active && !b.wasActive }
func (b *ButtonState) Ended() bool       { return b.wasActive && !b.active }
func (b *ButtonState) Analog() float64   { return b.analog }
func (b *ButtonState) HeldTime() float64 { return b.heldTime }

func (b *ButtonState) threshold() float64 {
	if b.Threshold <= 0 {
		return DefaultButtonThreshold
	}
	return b.Threshold
}
