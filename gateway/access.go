package gateway

// Access holds the two credential tiers over the same tables. The restricted
// handle is always present, the privileged one only when a privileged
// credential was configured for this deployment.
type Access struct {
	public     Gateway
	privileged Gateway
}

// NewAccess panics on a nil public gateway. privileged may be nil.
func NewAccess(public, privileged Gateway) *Access {
	if public == nil {
		panic("gateway: public gateway is required")
	}
	return &Access{public: public, privileged: privileged}
}

func (a *Access) Public() Gateway {
	return a.public
}

// Privileged never attempts a call: it fails fast when no credential exists
func (a *Access) Privileged() (Gateway, error) {
	if a.privileged == nil {
		return nil, ErrPrivilegedNotConfigured
	}
	return a.privileged, nil
}

func (a *Access) HasPrivileged() bool {
	return a.privileged != nil
}
