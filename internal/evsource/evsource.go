// Package evsource is the device-source collaborator named in spec.md §1's
// scope exclusion: discovering, opening and decoding an evdev touchpad, and
// opening the paired keyboard the core's DWT suppression listens to. No
// trackpoint listener is provided. It is the one place the module touches
// the kernel.
package evsource

import (
	"fmt"
	"strings"
	"syscall"
	"unsafe"

	evdev "github.com/gvalkov/golang-evdev"

	"touchpadd/internal/touchpad"
)

// eviocgabs mirrors linux/input.h's EVIOCGABS(abs) ioctl, used to read an
// axis's absinfo. golang-evdev exposes device discovery and raw event
// reads but not struct input_absinfo, so this one ioctl is hand-rolled the
// same way the teacher's main.go hand-rolls its uinput ioctls.
func eviocgabs(axis uint16) uintptr {
	const size = 24 // sizeof(struct input_absinfo): 6 x int32
	return uintptr(0x80000000 | (size << 16) | (int('E') << 8) | (0x40 + int(axis)))
}

type absinfo struct {
	Value, Min, Max, Fuzz, Flat, Resolution int32
}

func readAbsInfo(fd uintptr, axis uint16) (touchpad.AbsAxisInfo, error) {
	var info absinfo
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, eviocgabs(axis), uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		return touchpad.AbsAxisInfo{}, errno
	}
	return touchpad.AbsAxisInfo{Min: info.Min, Max: info.Max, Resolution: info.Resolution}, nil
}

// Device wraps an opened, grabbed evdev touchpad.
type Device struct {
	dev  *evdev.InputDevice
	path string
}

// Find locates a touchpad by the same keyword/must-contain matching rule
// as the teacher's findDevice: prefer a device whose name contains both
// keyword and mustContain, falling back to one that contains only keyword.
func Find(keyword, mustContain string) (string, error) {
	devices, err := evdev.ListInputDevices()
	if err != nil {
		return "", fmt.Errorf("list input devices: %w", err)
	}

	var fallback string
	for _, dev := range devices {
		name := strings.ToLower(dev.Name)
		if !strings.Contains(name, strings.ToLower(keyword)) {
			continue
		}
		if strings.Contains(name, strings.ToLower(mustContain)) {
			return dev.Fn, nil
		}
		if fallback == "" {
			fallback = dev.Fn
		}
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", fmt.Errorf("no input device matching keyword %q", keyword)
}

// Open opens and grabs the device at path, taking exclusive control of it
// (spec.md §1: the core is the only consumer of the raw kernel stream
// while running).
func Open(path string) (*Device, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := dev.Grab(); err != nil {
		dev.File.Close()
		return nil, fmt.Errorf("grab %s: %w", path, err)
	}
	return &Device{dev: dev, path: path}, nil
}

func (d *Device) Close() error {
	d.dev.Release()
	return d.dev.File.Close()
}

// Geometry reads the ABS_MT_POSITION_X/Y absinfo the core needs to derive
// button/edge/palm geometry at construction (spec.md §3).
func (d *Device) Geometry() (x, y touchpad.AbsAxisInfo, err error) {
	fd := d.dev.File.Fd()
	x, err = readAbsInfo(fd, touchpad.AbsMTPositionX)
	if err != nil {
		return x, y, fmt.Errorf("read ABS_MT_POSITION_X: %w", err)
	}
	y, err = readAbsInfo(fd, touchpad.AbsMTPositionY)
	if err != nil {
		return x, y, fmt.Errorf("read ABS_MT_POSITION_Y: %w", err)
	}
	return x, y, nil
}

// Linux input property bits (linux/input-event-codes.h) read via
// EVIOCGPROP, used to derive touchpad.DeviceTraits.
const (
	inputPropButtonpad   = 0x02
	inputPropTopbuttonpad = 0x03
	inputPropSemiMT       = 0x04
)

func evicgprop(size int) uintptr {
	return uintptr(0x80000000 | (size << 16) | (int('E') << 8) | 0x09)
}

// Traits derives touchpad.DeviceTraits from the kernel's reported
// capabilities: property bits for clickpad/topbuttonpad/semi-MT, and the
// widest ABS_MT_SLOT count as NumSlots.
func (d *Device) Traits() touchpad.DeviceTraits {
	fd := d.dev.File.Fd()
	var props [16]byte
	syscall.Syscall(syscall.SYS_IOCTL, fd, evicgprop(len(props)), uintptr(unsafe.Pointer(&props[0])))

	hasBit := func(bit int) bool {
		return props[bit/8]&(1<<uint(bit%8)) != 0
	}

	x, _, _ := d.Geometry()
	width := 0.0
	if x.Resolution > 0 {
		width = float64(x.Max-x.Min) / float64(x.Resolution)
	}

	name := strings.ToLower(d.dev.Name)
	return touchpad.DeviceTraits{
		IsClickpad:           hasBit(inputPropButtonpad),
		HasTopButtons:        hasBit(inputPropTopbuttonpad),
		TouchpadNoPhysButton: hasBit(inputPropButtonpad),
		IsApple:              strings.Contains(name, "apple") || strings.Contains(name, "bcm5974"),
		IsSemiMT:             hasBit(inputPropSemiMT),
		NumSlots:             d.numSlots(),
		WidthMM:              width,
	}
}

func (d *Device) numSlots() int {
	fd := d.dev.File.Fd()
	info, err := readAbsInfo(fd, touchpad.AbsMTSlot)
	if err != nil || info.Max <= 0 {
		return 1
	}
	return int(info.Max) + 1
}

// Read blocks for the next batch of raw kernel events (typically everything
// up to and including one SYN_REPORT) and decodes it into touchpad.RawEvent,
// the only shape the core accepts.
func (d *Device) Read() ([]touchpad.RawEvent, error) {
	events, err := d.dev.Read()
	if err != nil {
		return nil, err
	}
	out := make([]touchpad.RawEvent, len(events))
	for i, e := range events {
		out[i] = touchpad.RawEvent{Type: e.Type, Code: e.Code, Value: e.Value}
	}
	return out, nil
}

// KeyboardListener watches a paired keyboard for DWT (spec.md §4.6/§6). No
// pairing policy is applied anywhere: the keyboard is whichever device the
// caller opens (cmd/root.go passes its --keyboard-path flag).
type KeyboardListener struct {
	dev *evdev.InputDevice
}

func OpenKeyboard(path string) (*KeyboardListener, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyboard %s: %w", path, err)
	}
	return &KeyboardListener{dev: dev}, nil
}

// Watch runs until the keyboard device errors (typically on disconnect),
// calling onKey for every EV_KEY event. Intended to run on its own
// goroutine; onKey must be safe to call concurrently with the caller's
// touchpad dispatch and is expected to forward into
// touchpad.Device.NotifyKeyboardKey via a channel, not call it directly,
// preserving the core's single-goroutine contract (spec.md §5).
func (k *KeyboardListener) Watch(onKey func(code uint16, pressed bool)) error {
	for {
		events, err := k.dev.Read()
		if err != nil {
			return err
		}
		for _, e := range events {
			if e.Type != touchpad.EvKey {
				continue
			}
			onKey(e.Code, e.Value != 0)
		}
	}
}

func (k *KeyboardListener) Close() error {
	return k.dev.File.Close()
}
