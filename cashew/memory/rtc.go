package memory

// RTC register indices, as selected through RAM banks 0x08-0x0C.
const (
	RTCSeconds = iota
	RTCMinutes
	RTCHours
	RTCDayLow
	// RTCDayHigh holds bit 8 of the day counter (bit 0), halt (bit 6) and day carry (bit 7).
	RTCDayHigh
)

const (
	rtcBankBase = 0x08
	rtcCycles   = 4194304
	rtcHalt     = 0x40
	rtcCarry    = 0x80
)

var rtcMasks = [5]byte{0x3F, 0x3F, 0x1F, 0xFF, 0xC1}

// RTC is the MBC3 real time clock. The game sees a latched copy of the counters.
type RTC struct {
	real    [5]byte
	latched [5]byte
	count   int
}

// Tick advances the clock by one second every 4194304 cycles, unless halted.
func (r *RTC) Tick(cycles int) {
	if r.real[RTCDayHigh]&rtcHalt != 0 {
		return
	}
	r.count += cycles
	for r.count >= rtcCycles {
		r.count -= rtcCycles
		r.advance()
	}
}

// advance adds one second. Out of range values set by the game roll to 0
// without carrying, like the hardware counters.
func (r *RTC) advance() {
	if r.real[RTCSeconds] == 63 {
		r.real[RTCSeconds] = 0
		return
	}
	r.real[RTCSeconds]++
	if r.real[RTCSeconds] != 60 {
		return
	}
	r.real[RTCSeconds] = 0

	if r.real[RTCMinutes] == 63 {
		r.real[RTCMinutes] = 0
		return
	}
	r.real[RTCMinutes]++
	if r.real[RTCMinutes] != 60 {
		return
	}
	r.real[RTCMinutes] = 0

	if r.real[RTCHours] == 31 {
		r.real[RTCHours] = 0
		return
	}
	r.real[RTCHours]++
	if r.real[RTCHours] != 24 {
		return
	}
	r.real[RTCHours] = 0

	r.real[RTCDayLow]++
	if r.real[RTCDayLow] != 0 {
		return
	}
	if r.real[RTCDayHigh]&0x01 != 0 {
		r.real[RTCDayHigh] |= rtcCarry
	}
	r.real[RTCDayHigh] ^= 0x01
}

// Latch copies the running counters to the registers visible to the game.
func (r *RTC) Latch() {
	r.latched = r.real
}

// Read returns a latched register, 0xFF for banks past the day high register.
func (r *RTC) Read(register uint8) byte {
	if int(register) >= len(r.latched) {
		return 0xFF
	}
	return r.latched[register]
}

// Write sets a running register, keeping only its valid bits.
func (r *RTC) Write(register uint8, value byte) {
	if int(register) >= len(r.real) {
		return
	}
	r.real[register] = value & rtcMasks[register]
}

// Set loads the running counters, e.g. from the host wall clock.
// Bit 8 of day goes to the day high register, its halt and carry bits are kept.
func (r *RTC) Set(seconds, minutes, hours uint8, day uint16) {
	r.real[RTCSeconds] = seconds & rtcMasks[RTCSeconds]
	r.real[RTCMinutes] = minutes & rtcMasks[RTCMinutes]
	r.real[RTCHours] = hours & rtcMasks[RTCHours]
	r.real[RTCDayLow] = uint8(day)
	r.real[RTCDayHigh] = r.real[RTCDayHigh]&0xFE | uint8(day>>8)&0x01
}

// Registers returns the running counters.
func (r *RTC) Registers() [5]byte {
	return r.real
}
