package sysinfo

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// Memory is one snapshot of the process's memory counters, in bytes.
// RSS comes from the operating system; the heap fields come from the Go
// runtime; External is the runtime footprint outside the managed heap
// (stacks, GC metadata, allocator spans).
type Memory struct {
	RSS       uint64 `json:"rss"`
	HeapTotal uint64 `json:"heapTotal"`
	HeapUsed  uint64 `json:"heapUsed"`
	External  uint64 `json:"external"`
}

// Human renders the snapshot with IEC units for console output.
func (m Memory) Human() string {
	return fmt.Sprintf("rss=%s heapTotal=%s heapUsed=%s external=%s",
		humanize.IBytes(m.RSS), humanize.IBytes(m.HeapTotal),
		humanize.IBytes(m.HeapUsed), humanize.IBytes(m.External))
}

// Fetcher holds the OS/runtime query functions so tests can substitute
// deterministic data.
type Fetcher struct {
	Interfaces    func() (psnet.InterfaceStatList, error)
	ProcessMemory func(pid int32) (*process.MemoryInfoStat, error)
	ReadMemStats  func(*runtime.MemStats)
	Pid           func() int
}

// Probe answers memory and interface queries. Every call hits the OS
// again; nothing is cached.
type Probe struct {
	fetcher Fetcher
}

func New() *Probe {
	return &Probe{
		fetcher: Fetcher{
			Interfaces:    psnet.Interfaces,
			ProcessMemory: processMemory,
			ReadMemStats:  runtime.ReadMemStats,
			Pid:           os.Getpid,
		},
	}
}

// SetFetcher sets a custom fetcher for testing.
func (p *Probe) SetFetcher(fetcher Fetcher) {
	if fetcher.Interfaces == nil {
		fetcher.Interfaces = psnet.Interfaces
	}
	if fetcher.ProcessMemory == nil {
		fetcher.ProcessMemory = processMemory
	}
	if fetcher.ReadMemStats == nil {
		fetcher.ReadMemStats = runtime.ReadMemStats
	}
	if fetcher.Pid == nil {
		fetcher.Pid = os.Getpid
	}
	p.fetcher = fetcher
}

func processMemory(pid int32) (*process.MemoryInfoStat, error) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return nil, err
	}
	return proc.MemoryInfo()
}

// MemoryUsage snapshots the current process. When the OS query is not
// permitted, RSS falls back to the runtime's reserved size so the field
// stays meaningful.
func (p *Probe) MemoryUsage() (Memory, error) {
	var ms runtime.MemStats
	p.fetcher.ReadMemStats(&ms)

	snapshot := Memory{
		HeapTotal: ms.HeapSys,
		HeapUsed:  ms.HeapAlloc,
	}
	if ms.Sys > ms.HeapSys {
		snapshot.External = ms.Sys - ms.HeapSys
	}

	if info, err := p.fetcher.ProcessMemory(int32(p.fetcher.Pid())); err == nil && info != nil {
		snapshot.RSS = info.RSS
	} else {
		snapshot.RSS = ms.Sys
	}
	return snapshot, nil
}

// NetworkInterfaces maps each active non-loopback interface to its
// addresses, CIDR suffixes stripped. Interfaces without any usable
// address are omitted.
func (p *Probe) NetworkInterfaces() (map[string][]string, error) {
	list, err := p.fetcher.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	result := make(map[string][]string)
	for _, iface := range list {
		if hasFlag(iface.Flags, "loopback") {
			continue
		}
		var addrs []string
		for _, addr := range iface.Addrs {
			ip := normalizeAddr(addr.Addr)
			if ip == "" || isLoopbackAddr(ip) {
				continue
			}
			addrs = append(addrs, ip)
		}
		if len(addrs) > 0 {
			result[iface.Name] = addrs
		}
	}
	return result, nil
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, want) {
			return true
		}
	}
	return false
}

func normalizeAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if i := strings.IndexByte(addr, '/'); i >= 0 {
		addr = addr[:i]
	}
	return addr
}

// 某些平台的接口 flags 不带 loopback 标记，这里再按地址兜底过滤一次。
func isLoopbackAddr(ip string) bool {
	return ip == "::1" || strings.HasPrefix(ip, "127.")
}
