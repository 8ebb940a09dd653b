package domain

// Capability is a named, gate-checked action. The grant table below is the
// single source of truth for which role may perform which action; handlers
// and services consult it instead of branching on role names.
type Capability string

const (
	CapUserManagement     Capability = "access-user-management"
	CapModelManagement    Capability = "access-model-management"
	CapSystemCheck        Capability = "access-system-check"
	CapBackup             Capability = "access-backup"
	CapManageSuperAdmin   Capability = "manage-super-admin"
	CapModifyGlobalLimits Capability = "modify-global-limits"
	CapChangeAppTitle     Capability = "change-app-title"
	CapAllowAllImages     Capability = "access-allow-all-images"
	CapResetCounters      Capability = "reset-counters"
)

// capabilityGrants maps each capability to the minimum role that holds it.
var capabilityGrants = map[Capability]Role{
	CapUserManagement:     RoleAdmin,
	CapModelManagement:    RoleAdmin,
	CapSystemCheck:        RoleAdmin,
	CapBackup:             RoleAdmin,
	CapResetCounters:      RoleAdmin,
	CapManageSuperAdmin:   RoleSuperAdmin,
	CapModifyGlobalLimits: RoleSuperAdmin,
	CapChangeAppTitle:     RoleSuperAdmin,
	CapAllowAllImages:     RoleSuperAdmin,
}

// AllowedFor reports whether the given role holds this capability.
// Unknown capabilities are always denied.
func (c Capability) AllowedFor(role Role) bool {
	minimum, ok := capabilityGrants[c]
	if !ok {
		return false
	}
	return role.AtLeast(minimum)
}

// CapabilitiesFor returns every capability the role holds.
func CapabilitiesFor(role Role) []Capability {
	var caps []Capability
	for c, minimum := range capabilityGrants {
		if role.AtLeast(minimum) {
			caps = append(caps, c)
		}
	}
	return caps
}
