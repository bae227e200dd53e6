package cashew

type options struct {
	drawer  LineDrawer
	link    SerialLink
	boot    BootROM
	onError ErrorHandler
}

// Option configures the collaborators of an Emulator.
type Option func(*options)

// WithLineDrawer delivers rendered lines to drawer. Without it nothing is rendered.
func WithLineDrawer(drawer LineDrawer) Option { return func(o *options) { o.drawer = drawer } }

// WithSerialLink plugs a link cable into the serial port.
func WithSerialLink(link SerialLink) Option { return func(o *options) { o.link = link } }

// WithBootROM runs boot from 0x0000 on every Reset instead of starting at the
// cartridge entry point with the boot program's results.
func WithBootROM(boot BootROM) Option { return func(o *options) { o.boot = boot } }

// WithErrorHandler is called once when a fatal error stops the emulator.
func WithErrorHandler(handler ErrorHandler) Option { return func(o *options) { o.onError = handler } }
