package mmio

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"

	"github.com/rv32lab/rv32sim/pkg/memory"
)

// CoreAPIVersion is the version this build's device interface implements.
// A device's Manifest.Requires constraint is checked against it at
// registration time.
const CoreAPIVersion = "1.0.0"

// ErrIncompatibleDevice indicates a device's declared version constraint
// does not admit CoreAPIVersion.
var ErrIncompatibleDevice = fmt.Errorf("mmio: device is not compatible with core API version %s", CoreAPIVersion)

// Manifest describes a device's identity and compatibility requirement
// before it is wired into a Memory.
type Manifest struct {
	// Requires is a semver constraint string (e.g. ">= 1.0.0, < 2.0.0")
	// that CoreAPIVersion must satisfy.
	Requires string
}

// Registered is a device that has been accepted by a Registry: it carries
// a stable instance ID for log correlation alongside the original
// memory.Device.
type Registered struct {
	ID     uuid.UUID
	Device memory.Device
}

// Registry assigns instance IDs to devices and checks their declared
// compatibility requirement before they can be wired into a Memory via
// AddTo.
type Registry struct {
	coreVersion *semver.Version
	devices     []Registered
}

// NewRegistry constructs a Registry checking devices against
// CoreAPIVersion.
func NewRegistry() (*Registry, error) {
	v, err := semver.NewVersion(CoreAPIVersion)
	if err != nil {
		return nil, err
	}
	return &Registry{coreVersion: v}, nil
}

// Register checks manifest.Requires against the registry's core version
// and, if compatible, assigns device a fresh instance ID.
func (r *Registry) Register(device memory.Device, manifest Manifest) (Registered, error) {
	if manifest.Requires != "" {
		constraint, err := semver.NewConstraint(manifest.Requires)
		if err != nil {
			return Registered{}, fmt.Errorf("mmio: invalid version constraint %q: %w", manifest.Requires, err)
		}
		if !constraint.Check(r.coreVersion) {
			return Registered{}, fmt.Errorf("%w: device %s requires %q, core is %s",
				ErrIncompatibleDevice, device.Name(), manifest.Requires, CoreAPIVersion)
		}
	}
	reg := Registered{ID: uuid.New(), Device: device}
	r.devices = append(r.devices, reg)
	return reg, nil
}

// Devices returns every device accepted so far.
func (r *Registry) Devices() []Registered {
	out := make([]Registered, len(r.devices))
	copy(out, r.devices)
	return out
}

// AddTo registers dev as an MMIORegion spanning [start, start+size) on
// mem, after checking manifest compatibility via Register.
func (r *Registry) AddTo(mem *memory.Memory, start memory.Address, size uint64, device memory.Device, manifest Manifest) (Registered, error) {
	reg, err := r.Register(device, manifest)
	if err != nil {
		return Registered{}, err
	}
	region := memory.NewMMIORegion(start, size, device)
	if err := mem.AddRegion(region); err != nil {
		return Registered{}, err
	}
	return reg, nil
}
