// Package system — встроенный модуль "system": диагностика узла, на котором
// работает хост-программа.
package system

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"skyhook/internal/core"
)

// Module отдает базовые метрики узла.
type Module struct{}

// New создает модуль.
func New() (core.Module, error) { return &Module{}, nil }

func (m *Module) Name() string { return "system" }

func (m *Module) Functions() []core.Func {
	return []core.Func{
		{Name: "host_info", Call: m.hostInfo},
		{Name: "memory", Call: m.memory},
		{Name: "load_average", Call: m.loadAverage},
	}
}

func (m *Module) hostInfo(map[string]interface{}) (interface{}, error) {
	info, err := host.Info()
	if err != nil {
		return nil, fmt.Errorf("host info: %w", err)
	}
	return map[string]interface{}{
		"hostname":    info.Hostname,
		"platform":    info.Platform,
		"platformVer": info.PlatformVersion,
		"kernel":      info.KernelVersion,
		"uptime_sec":  info.Uptime,
		"boot_time":   time.Unix(int64(info.BootTime), 0).UTC().Format(time.RFC3339),
	}, nil
}

func (m *Module) memory(map[string]interface{}) (interface{}, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("memory info: %w", err)
	}
	return map[string]interface{}{
		"mem_total":    vm.Total,
		"mem_used":     vm.Used,
		"mem_used_pct": vm.UsedPercent,
	}, nil
}

func (m *Module) loadAverage(map[string]interface{}) (interface{}, error) {
	avg, err := load.Avg()
	if err != nil {
		return nil, fmt.Errorf("load info: %w", err)
	}
	return map[string]interface{}{
		"load1":  avg.Load1,
		"load5":  avg.Load5,
		"load15": avg.Load15,
	}, nil
}
