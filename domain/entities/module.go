package entities

// ModuleID is the stable identifier of a loadable unit of code: the host
// executable or an extension module. Registrars are keyed by it.
type ModuleID string

// HostModule is the conventional identifier of the primary executable.
const HostModule ModuleID = "host"

func (m ModuleID) String() string {
	return string(m)
}
