package backend

import (
	"errors"
	"log/slog"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/shaderwall/gpucore"
)

// Backend name constants.
const (
	// BackendNative is the gogpu/wgpu HAL device. It needs a host provider.
	BackendNative = "native"

	// BackendNoop is the HAL device on the hal/noop adapter. It validates
	// and records GPU work without producing pixels.
	BackendNoop = "noop"

	// BackendSoftware is the CPU reference device.
	BackendSoftware = "software"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNoProvider is returned by backends that need a host GPU provider.
	ErrNoProvider = errors.New("backend: no device provider")
)

// Config carries what a factory may need to open a device.
type Config struct {
	// Provider supplies the host's GPU device and queue. Only the native
	// backend uses it.
	Provider gpucontext.DeviceProvider

	// Logger receives device diagnostics. Nil means the shared logger.
	Logger *slog.Logger
}

// Factory opens a new device.
type Factory func(cfg Config) (gpucore.Device, error)
