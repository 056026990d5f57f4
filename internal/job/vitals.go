// 文件路径: internal/job/vitals.go
// 模块说明: 这是 internal 模块里的 vitals 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package job

import (
	"context"
	"log/slog"

	"github.com/Ajayos/Server/internal/sysinfo"
)

// VitalsJob 周期性把进程运行指标写进日志，给没接监控系统的部署兜底。
type VitalsJob struct {
	probe  *sysinfo.Probe
	logger *slog.Logger
}

// NewVitalsJob 构造运行指标上报任务。
func NewVitalsJob(probe *sysinfo.Probe, logger *slog.Logger) *VitalsJob {
	if probe == nil {
		probe = sysinfo.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VitalsJob{probe: probe, logger: logger}
}

// Name 返回任务标识。
func (j *VitalsJob) Name() string {
	return "vitals-report"
}

// Run 采集一次快照并写日志。
func (j *VitalsJob) Run(ctx context.Context) error {
	vitals, err := j.probe.Vitals()
	if err != nil {
		j.logger.Error("vitals collection failed", "error", err)
		return err
	}

	j.logger.Info("vitals report",
		"goroutines", vitals.Goroutines,
		"rss", vitals.Memory.RSS,
		"heap_total", vitals.Memory.HeapTotal,
		"heap_used", vitals.Memory.HeapUsed,
		"interfaces", len(vitals.Interfaces),
	)
	return nil
}
