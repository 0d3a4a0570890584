package harness

import (
	"errors"
	"fmt"

	"github.com/sarchlab/xfertest/platform"
)

// A ProvisionedRegion is a reserved window whose allocation capability
// has been bound to an owning device for the duration of a run.
type ProvisionedRegion struct {
	Region platform.ReservedRegion
	Owner  *platform.Device

	childOwner bool
}

// A RegionProvisioner establishes ownership of one reserved window.
// Provision and Release are symmetric; Release must undo everything a
// successful Provision did.
type RegionProvisioner interface {
	Provision(index int, name string) (*ProvisionedRegion, error)
	Release(p *ProvisionedRegion) error
}

// resolveRegion looks up the window at index and validates that it can
// hold a full test buffer.
func resolveRegion(
	cfg platform.Config,
	index int,
	bufferSize uint64,
) (platform.ReservedRegion, error) {
	region, err := cfg.Region(index)
	if err != nil {
		return platform.ReservedRegion{},
			fmt.Errorf("%w %d", err, index)
	}

	if region.Size < bufferSize {
		return platform.ReservedRegion{},
			fmt.Errorf("%w: %s holds %#x of %#x bytes",
				ErrRegionTooSmall, region.Name, region.Size, bufferSize)
	}

	return region, nil
}

// bindProvisioner binds windows directly to the device that also owns
// the engine channel.
type bindProvisioner struct {
	cfg        platform.Config
	owner      *platform.Device
	bufferSize uint64
}

func (p *bindProvisioner) Provision(
	index int,
	name string,
) (*ProvisionedRegion, error) {
	region, err := resolveRegion(p.cfg, index, p.bufferSize)
	if err != nil {
		return nil, err
	}

	return &ProvisionedRegion{Region: region, Owner: p.owner}, nil
}

func (p *bindProvisioner) Release(*ProvisionedRegion) error {
	return nil
}

// childProvisioner synthesizes one child device per window. The child
// inherits the parent's addressing attributes and is registered with
// the platform; a partial failure unwinds the fresh child before the
// error is returned.
type childProvisioner struct {
	cfg        platform.Config
	parent     *platform.Device
	registry   *platform.Registry
	bufferSize uint64
}

func (p *childProvisioner) Provision(
	index int,
	name string,
) (*ProvisionedRegion, error) {
	region, err := resolveRegion(p.cfg, index, p.bufferSize)
	if err != nil {
		return nil, err
	}

	child := platform.NewDevice(p.parent.Name() + "." + name)
	if err := child.Init(p.parent); err != nil {
		child.Destroy()
		return nil, err
	}
	if err := p.registry.Register(child); err != nil {
		child.Destroy()
		return nil, err
	}

	return &ProvisionedRegion{
		Region:     region,
		Owner:      child,
		childOwner: true,
	}, nil
}

func (p *childProvisioner) Release(r *ProvisionedRegion) error {
	if !r.childOwner {
		return nil
	}

	return errors.Join(
		p.registry.Deregister(r.Owner),
		r.Owner.Destroy(),
	)
}
