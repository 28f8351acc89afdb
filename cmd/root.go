package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"touchpadd/internal/evsource"
	"touchpadd/internal/touchpad"
	"touchpadd/internal/uinputsink"
)

// Flat tuning/default-matching constants, generalized from the teacher's
// DeviceNameKeyword/DeviceNameMustContain into flags below.
const (
	defaultDeviceKeyword = "touchpad"
	defaultDeviceMatch   = "touchpad"
	virtualPointerName   = "touchpadd Virtual Pointer"
	virtualTrackpointName = "touchpadd Virtual Trackpoint"
)

var opts struct {
	devicePath   string
	deviceKeyword string
	deviceMatch   string
	keyboardPath  string
	trackpoint    bool

	leftHanded    bool
	clickMethod   string
	scrollMethod  string
	tapEnabled    bool
	tapDragLock   bool
	naturalScroll bool

	verbose bool
}

// NewRootCmd builds the touchpadd command, wiring the flag surface of
// spec.md §4.7/§6 onto the config API in internal/touchpad/config.go.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "touchpadd",
		Short: "Multi-touch touchpad input processor",
		RunE:  run,
	}

	flags := root.Flags()
	flags.StringVar(&opts.devicePath, "device-path", "", "exact evdev device path, bypassing keyword matching")
	flags.StringVar(&opts.deviceKeyword, "device-keyword", defaultDeviceKeyword, "substring an input device's name must contain to be considered")
	flags.StringVar(&opts.deviceMatch, "device-match", defaultDeviceMatch, "preferred substring to disambiguate among keyword matches")
	flags.StringVar(&opts.keyboardPath, "keyboard-path", "", "paired keyboard device path for disable-while-typing")
	flags.BoolVar(&opts.trackpoint, "trackpoint", false, "create a virtual trackpoint passthrough for top-button events")

	flags.BoolVar(&opts.leftHanded, "left-handed", false, "swap left/right buttons")
	flags.StringVar(&opts.clickMethod, "click-method", "", "button-areas|clickfinger|none (default: device-dependent)")
	flags.StringVar(&opts.scrollMethod, "scroll-method", "", "two-finger|edge|none (default: device-dependent)")
	flags.BoolVar(&opts.tapEnabled, "tap", false, "enable tap-to-click (default: device-dependent)")
	flags.BoolVar(&opts.tapDragLock, "tap-drag-lock", false, "hold a drag across a brief lift-off")
	flags.BoolVar(&opts.naturalScroll, "natural-scroll", false, "invert scroll direction")
	flags.BoolVar(&opts.verbose, "verbose", false, "debug-level logging")

	return root
}

func run(cmd *cobra.Command, args []string) error {
	log := touchpad.Logger
	if opts.verbose {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	devicePath := opts.devicePath
	if devicePath == "" {
		found, err := evsource.Find(opts.deviceKeyword, opts.deviceMatch)
		if err != nil {
			return fmt.Errorf("find touchpad: %w", err)
		}
		devicePath = found
	}
	log.Info().Str("path", devicePath).Msg("found touchpad")

	dev, err := evsource.Open(devicePath)
	if err != nil {
		return fmt.Errorf("open touchpad: %w", err)
	}
	defer dev.Close()

	x, y, err := dev.Geometry()
	if err != nil {
		return fmt.Errorf("read touchpad geometry: %w", err)
	}
	traits := dev.Traits()

	pointer, err := uinputsink.New(virtualPointerName)
	if err != nil {
		return fmt.Errorf("create virtual pointer: %w", err)
	}
	defer pointer.Close()

	core := touchpad.NewDevice(traits.NumSlots, traits.NumSlots, x, y, traits, pointer)

	if opts.trackpoint && traits.HasTopButtons {
		trackpointSink, err := uinputsink.New(virtualTrackpointName)
		if err != nil {
			return fmt.Errorf("create virtual trackpoint: %w", err)
		}
		defer trackpointSink.Close()
		core.SetTrackpointSink(trackpointSink)
	}

	applyFlags(cmd, core, traits)

	keyEvents := make(chan keyEvent, 8)
	if opts.keyboardPath != "" {
		kbd, err := evsource.OpenKeyboard(opts.keyboardPath)
		if err != nil {
			log.Warn().Err(err).Msg("disable-while-typing unavailable: could not open paired keyboard")
		} else {
			defer kbd.Close()
			go watchKeyboard(kbd, keyEvents, log)
		}
	}

	return dispatchLoop(dev, core, keyEvents, log)
}

// applyFlags realizes the CLI surface onto the device's runtime config,
// leaving any flag the user never set at its DefaultOptions value.
func applyFlags(cmd *cobra.Command, core *touchpad.Device, traits touchpad.DeviceTraits) {
	flags := cmd.Flags()
	if flags.Changed("tap") {
		core.SetTapEnabled(opts.tapEnabled)
	}
	if flags.Changed("tap-drag-lock") {
		core.SetTapDragLock(opts.tapDragLock)
	}
	if flags.Changed("natural-scroll") {
		core.SetNaturalScroll(opts.naturalScroll)
	}
	if flags.Changed("left-handed") {
		core.SetLeftHanded(opts.leftHanded)
	}

	switch opts.clickMethod {
	case "button-areas":
		core.SetClickMethod(touchpad.ClickMethodButtonAreas)
	case "clickfinger":
		core.SetClickMethod(touchpad.ClickMethodClickfinger)
	case "none":
		core.SetClickMethod(touchpad.ClickMethodNone)
	}

	switch opts.scrollMethod {
	case "two-finger":
		core.SetScrollMethod(touchpad.ScrollMethodTwoFinger)
	case "edge":
		core.SetScrollMethod(touchpad.ScrollMethodEdge)
	case "none":
		core.SetScrollMethod(touchpad.ScrollMethodNone)
	}
}

// keyEvent carries a paired keyboard's press/release across to the
// dispatch goroutine: the keyboard-watch goroutine must never call into
// core directly (spec.md §5's single-goroutine contract), since that would
// race with Dispatch/HandleTimeout over the shared FSM state.
type keyEvent struct {
	code    uint16
	pressed bool
	millis  uint64
}

func watchKeyboard(kbd *evsource.KeyboardListener, keyEvents chan<- keyEvent, log zerolog.Logger) {
	err := kbd.Watch(func(code uint16, pressed bool) {
		keyEvents <- keyEvent{code: code, pressed: pressed, millis: nowMillis()}
	})
	if err != nil {
		log.Warn().Err(err).Msg("paired keyboard watch stopped")
	}
}

// dispatchLoop is the single event-loop goroutine required by spec.md §5:
// raw kernel events, timer expirations and paired-keyboard activity are all
// drained here, serialized through one Device, matching the teacher's
// single `for { dev.Read() }` loop generalized to also select on the timer
// service and the keyboard-watch channel.
func dispatchLoop(dev *evsource.Device, core *touchpad.Device, keyEvents <-chan keyEvent, log zerolog.Logger) error {
	rawEvents := make(chan []touchpad.RawEvent, 8)
	readErrs := make(chan error, 1)

	go func() {
		for {
			events, err := dev.Read()
			if err != nil {
				readErrs <- err
				return
			}
			rawEvents <- events
		}
	}()

	timers := core.Timers()
	log.Info().Msg("touchpadd running")

	for {
		select {
		case events := <-rawEvents:
			core.Dispatch(events, nowMillis())
		case dl := <-timers.Fired:
			core.HandleTimeout(dl, nowMillis())
		case ev := <-keyEvents:
			core.NotifyKeyboardKey(ev.code, ev.pressed, ev.millis)
		case err := <-readErrs:
			return fmt.Errorf("touchpad read loop stopped: %w", err)
		}
	}
}

func nowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}
