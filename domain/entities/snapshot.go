package entities

// EntrySnapshot is a diagnostic view of one directory entry.
type EntrySnapshot struct {
	Key             InterfaceKey         `json:"key"`
	Active          *ImplementationInfo  `json:"active,omitempty"`
	Implementations []ImplementationInfo `json:"implementations"`
	References      int                  `json:"references"`
}

// ImplementationInfo names one published implementation.
type ImplementationInfo struct {
	Class  string   `json:"class"`
	Module ModuleID `json:"module"`
}

// KindStats reports the lifecycle counters of one manager kind.
// Live is Created minus Destroyed and never exceeds 1 outside a transfer.
type KindStats struct {
	Kind       string `json:"kind"`
	Created    int    `json:"created"`
	Destroyed  int    `json:"destroyed"`
	Live       int    `json:"live"`
	Registrars int    `json:"registrars"`
}
