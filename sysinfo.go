// 文件路径: sysinfo.go
// 模块说明: 系统信息查询的门面转发：网卡列表和进程内存快照。
package server

import "github.com/Ajayos/Server/internal/sysinfo"

// Memory is the four-field memory snapshot returned by MemoryUsage.
type Memory = sysinfo.Memory

// NetworkInterfaces maps each active non-loopback interface name to its
// addresses. The OS is queried on every call; nothing is cached.
func (s *Server) NetworkInterfaces() (map[string][]string, error) {
	return s.probe.NetworkInterfaces()
}

// MemoryUsage snapshots the process's memory counters: OS resident set
// size, heap reserved, heap in use, and the runtime footprint outside
// the heap. All fields are non-negative byte counts, recomputed per call.
func (s *Server) MemoryUsage() (Memory, error) {
	return s.probe.MemoryUsage()
}
