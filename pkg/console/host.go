package console

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"sitemap-console/pkg/control"
	"sitemap-console/pkg/setting"
)

// URLMemoryKB is the memory one in-memory URL entry takes, in KB.
const URLMemoryKB = 0.25

// URLDiskKB is the disk space one on-disk URL entry takes, in KB.
const URLDiskKB = 0.5

const (
	memLimitExpr  = `host_mem_kb > 0 ? min(max_url_in_memory * url_mem_kb, host_mem_kb) : max_url_in_memory * url_mem_kb`
	diskLimitExpr = `host_disk_kb > 0 ? min(max_disk_space, max_url_in_disk * url_disk_kb, host_disk_kb) : min(max_disk_space, max_url_in_disk * url_disk_kb)`
)

// HostLimits caps the derived limits at what the machine has. Zero means
// unknown.
type HostLimits struct {
	MemKB  uint64 `json:"mem_kb"`
	DiskKB uint64 `json:"disk_kb"`
}

// ReadHostLimits reads total memory and the free space of the file system
// holding path.
func ReadHostLimits(ctx context.Context, path string) (HostLimits, error) {
	var limits HostLimits
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return limits, fmt.Errorf("read memory: %w", err)
	}
	limits.MemKB = vm.Total / 1024

	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return limits, fmt.Errorf("read disk usage of %s: %w", path, err)
	}
	limits.DiskKB = usage.Free / 1024
	return limits, nil
}

func (c *SiteSettings) buildDerived() error {
	memCtrl := control.NewText(controlID(string(PageSite), "cur_mem_limit"))
	diskCtrl := control.NewText(controlID(string(PageSite), "cur_disk_limit"))
	for _, ctrl := range []control.Control{memCtrl, diskCtrl} {
		ctrl.SetReadonly(true)
		if err := c.form.Add(ctrl); err != nil {
			return err
		}
	}

	var err error
	if c.memLimit, err = setting.NewDerived("cur_mem_limit", memLimitExpr, memCtrl, c.logger); err != nil {
		return err
	}
	if c.diskLimit, err = setting.NewDerived("cur_disk_limit", diskLimitExpr, diskCtrl, c.logger); err != nil {
		return err
	}

	c.memLimit.Set("url_mem_kb", URLMemoryKB)
	c.memLimit.Set("host_mem_kb", 0.0)
	c.diskLimit.Set("url_disk_kb", URLDiskKB)
	c.diskLimit.Set("host_disk_kb", 0.0)

	for _, root := range []*setting.Group{c.global, c.site} {
		c.memLimit.Watch(root.Setting("max_url_in_memory"))
		c.diskLimit.Watch(root.Setting("max_url_in_disk"), root.Setting("max_disk_space"))
	}
	return nil
}

// SetHostLimits updates the machine limits the derived displays are
// capped at.
func (c *SiteSettings) SetHostLimits(l HostLimits) {
	c.memLimit.Set("host_mem_kb", float64(l.MemKB))
	c.diskLimit.Set("host_disk_kb", float64(l.DiskKB))
}

// DerivedValues returns the computed displays of the site page.
func (c *SiteSettings) DerivedValues() map[string]string {
	return map[string]string{
		c.memLimit.Name():  c.memLimit.Value(),
		c.diskLimit.Name(): c.diskLimit.Value(),
	}
}
