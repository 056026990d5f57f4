package sysinfo

import (
	"runtime"
	"time"
)

// Vitals is the JSON payload served by the diagnostics endpoint and
// consumed by the terminal dashboard. Instance, Env and Uptime are
// filled by the owning server; the probe fills the rest.
type Vitals struct {
	Instance   string              `json:"instance,omitempty"`
	Env        string              `json:"env,omitempty"`
	Uptime     string              `json:"uptime,omitempty"`
	Goroutines int                 `json:"goroutines"`
	Memory     Memory              `json:"memory"`
	Interfaces map[string][]string `json:"interfaces"`
	Timestamp  time.Time           `json:"ts"`
}

// Vitals collects a full snapshot in one call.
func (p *Probe) Vitals() (Vitals, error) {
	memory, err := p.MemoryUsage()
	if err != nil {
		return Vitals{}, err
	}
	interfaces, err := p.NetworkInterfaces()
	if err != nil {
		return Vitals{}, err
	}
	return Vitals{
		Goroutines: runtime.NumGoroutine(),
		Memory:     memory,
		Interfaces: interfaces,
		Timestamp:  time.Now().UTC(),
	}, nil
}
