package component

// Hand identifies a controller. Values are bit flags so HandEither can express
// "either hand".
type Hand uint8

const (
	HandLeft Hand = 1 << iota
	HandRight

	HandEither = HandLeft | HandRight
)

// Other returns the opposite hand.
func (h Hand) Other() Hand {
	switch h {
	case HandLeft:
		return HandRight
	case HandRight:
		return HandLeft
	}
	return 0
}

// Has reports whether h includes o.
func (h Hand) Has(o Hand) bool {
	return o != 0 && h&o == o
}

// index maps a single hand to 0 or 1.
func (h Hand) index() int {
	if h == HandRight {
		return 1
	}
	return 0
}

func (h Hand) String() string {
	switch h {
	case HandLeft:
		return "left"
	case HandRight:
		return "right"
	case HandEither:
		return "either"
	}
	return "none"
}

// ParseHand accepts "left", "right" or "either".
func ParseHand(s string) (Hand, bool) {
	switch s {
	case "left", "Left", "l":
		return HandLeft, true
	case "right", "Right", "r":
		return HandRight, true
	case "either", "both", "any":
		return HandEither, true
	}
	return 0, false
}
