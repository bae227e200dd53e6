package cashew

// Config holds the emulation options fixed at construction.
type Config struct {
	// Color allocates the color console's memory and honours the cartridge's
	// color flag. Without it every cartridge runs in monochrome mode.
	Color bool
	// AccurateSprites orders sprites by X coordinate, then OAM index, and
	// draws at most 10 per line. Otherwise sprites are drawn in OAM order.
	AccurateSprites bool
	// FrameSkip renders every other frame.
	FrameSkip bool
	// Interlace renders odd and even lines on alternate frames.
	Interlace bool
	// TaggedPalette ORs the palette in use into monochrome pixels, see video.TagBG.
	TaggedPalette bool
}

// DefaultConfig returns the color capable, accurate, untagged configuration.
func DefaultConfig() Config {
	return Config{
		Color:           true,
		AccurateSprites: true,
	}
}
