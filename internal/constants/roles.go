package constants

// Capability carried by admin tokens minted by the host CMS
type Capability string

const (
	CapabilityManageOptions Capability = "manage_options"
)

func (c Capability) String() string { return string(c) }
