package domain

import "time"

// ProviderStatus is the health record kept per adapter. One entry exists per
// provider for the lifetime of the process; each availability probe or refresh
// overwrites it.
type ProviderStatus struct {
	Name        string     `json:"name"`
	Available   bool       `json:"available"`
	LastCheck   time.Time  `json:"lastCheck"`
	LastRefresh *time.Time `json:"lastRefresh,omitempty"`
	ItemCount   int        `json:"itemCount,omitempty"`
	Error       string     `json:"error,omitempty"`
}
