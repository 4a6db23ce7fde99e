// Package vsphere collects VM inventory records from a live vCenter via
// govmomi. The collector is read-only: it queries properties and never
// issues any reconfiguration or power operation.
package vsphere

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"

	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/inventory"
)

// Credentials holds vCenter connection info.
type Credentials struct {
	Host       string
	Username   string
	Password   string
	Datacenter string
	Insecure   bool
}

// Collector wraps a govmomi client for inventory discovery.
type Collector struct {
	creds      Credentials
	client     *govmomi.Client
	finder     *find.Finder
	datacenter *object.Datacenter
}

func NewCollector(creds Credentials) *Collector {
	return &Collector{creds: creds}
}

// Connect establishes the vCenter session.
func (c *Collector) Connect(ctx context.Context) error {
	host := c.creds.Host
	if !strings.HasPrefix(host, "https://") && !strings.HasPrefix(host, "http://") {
		host = "https://" + host
	}
	u, err := url.Parse(host + "/sdk")
	if err != nil {
		return fmt.Errorf("invalid vCenter URL %q: %w", c.creds.Host, err)
	}
	u.User = url.UserPassword(c.creds.Username, c.creds.Password)

	client, err := govmomi.NewClient(ctx, u, c.creds.Insecure)
	if err != nil {
		errStr := err.Error()
		switch {
		case strings.Contains(errStr, "connection refused"):
			return fmt.Errorf("connection refused to vCenter at %s - verify the host is reachable", c.creds.Host)
		case strings.Contains(errStr, "no such host"):
			return fmt.Errorf("cannot resolve vCenter hostname %q - verify DNS", c.creds.Host)
		case strings.Contains(errStr, "401"), strings.Contains(errStr, "Cannot complete login"):
			return fmt.Errorf("authentication failed - verify username and password")
		case strings.Contains(errStr, "certificate"), strings.Contains(errStr, "x509"):
			return fmt.Errorf("SSL certificate error connecting to %s - try setting VSPHERE_INSECURE=true", c.creds.Host)
		}
		return fmt.Errorf("failed to connect to vCenter at %s: %w", c.creds.Host, err)
	}

	c.client = client
	c.finder = find.NewFinder(client.Client, true)

	dc, err := c.finder.Datacenter(ctx, c.creds.Datacenter)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("datacenter %q not found - verify the datacenter name", c.creds.Datacenter)
		}
		return fmt.Errorf("accessing datacenter %q: %w", c.creds.Datacenter, err)
	}
	c.datacenter = dc
	c.finder.SetDatacenter(dc)

	slog.Info("vCenter connected", "datacenter", c.creds.Datacenter)
	return nil
}

// Disconnect closes the vCenter session.
func (c *Collector) Disconnect(ctx context.Context) error {
	if c.client != nil {
		return c.client.Logout(ctx)
	}
	return nil
}

// CollectVMs retrieves every VM in the datacenter as an inventory record.
func (c *Collector) CollectVMs(ctx context.Context) ([]inventory.VM, error) {
	vms, err := c.finder.VirtualMachineList(ctx, "*")
	if err != nil {
		return nil, fmt.Errorf("listing VMs: %w", err)
	}

	out := make([]inventory.VM, 0, len(vms))
	for _, vm := range vms {
		rec, err := c.collectVM(ctx, vm)
		if err != nil {
			slog.Warn("skipping unreadable VM", "vm", vm.Name(), "err", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Collector) collectVM(ctx context.Context, vm *object.VirtualMachine) (inventory.VM, error) {
	var vmMo mo.VirtualMachine
	props := []string{"config", "guest", "runtime", "summary", "snapshot", "customValue"}
	if err := vm.Properties(ctx, vm.Reference(), props, &vmMo); err != nil {
		return inventory.VM{}, err
	}

	rec := inventory.VM{
		SchemaVersion: inventory.SchemaVersion,
		VMID:          vm.Reference().Value,
		Name:          strings.TrimSpace(vm.Name()),
		PowerState:    powerState(vmMo.Runtime.PowerState),
		ToolsStatus:   toolsStatus(vmMo.Guest),
		Tags:          []string{},
	}

	if vmMo.Config != nil {
		rec.CPU = float64(vmMo.Config.Hardware.NumCPU)
		rec.MemoryMB = float64(vmMo.Config.Hardware.MemoryMB)
		rec.GuestOS = vmMo.Config.GuestFullName
		rec.NICs = countNICs(vmMo.Config.Hardware.Device)
	}

	if st := vmMo.Summary.Storage; st != nil {
		rec.DiskGB = float64(st.Committed+st.Uncommitted) / (1024 * 1024 * 1024)
	}
	if up := vmMo.Summary.QuickStats.UptimeSeconds; up > 0 {
		rec.UptimeDays = float64(up) / 86400
	}
	rec.AvgCPUUsagePct = cpuUsagePct(vmMo.Summary)
	rec.AvgMemUsagePct = memUsagePct(vmMo.Summary)

	count, oldest := snapshotStats(vmMo.Snapshot, time.Now())
	rec.SnapshotCount = count
	rec.MaxSnapshotAgeDays = oldest

	// Custom attributes ride along as key=value tags, preserving the
	// flat string tag contract consumed by the classifier.
	for _, cv := range vmMo.CustomValue {
		if field, ok := cv.(*types.CustomFieldStringValue); ok {
			rec.Tags = append(rec.Tags, fmt.Sprintf("field_%d=%s", field.Key, field.Value))
		}
	}

	return rec, nil
}

func powerState(ps types.VirtualMachinePowerState) string {
	if ps == types.VirtualMachinePowerStatePoweredOn {
		return inventory.PoweredOn
	}
	return inventory.PoweredOff
}

func toolsStatus(guest *types.GuestInfo) string {
	if guest == nil {
		return inventory.ToolsUnknown
	}
	switch guest.ToolsRunningStatus {
	case string(types.VirtualMachineToolsRunningStatusGuestToolsRunning):
		return inventory.ToolsRunning
	case string(types.VirtualMachineToolsRunningStatusGuestToolsNotRunning):
		return inventory.ToolsNotRunning
	default:
		return inventory.ToolsUnknown
	}
}

func countNICs(devices []types.BaseVirtualDevice) int {
	n := 0
	for _, d := range devices {
		if _, ok := d.(types.BaseVirtualEthernetCard); ok {
			n++
		}
	}
	return n
}

func cpuUsagePct(s types.VirtualMachineSummary) float64 {
	if s.Runtime.MaxCpuUsage <= 0 {
		return 0
	}
	return float64(s.QuickStats.OverallCpuUsage) / float64(s.Runtime.MaxCpuUsage) * 100
}

func memUsagePct(s types.VirtualMachineSummary) float64 {
	if s.Config.MemorySizeMB <= 0 {
		return 0
	}
	return float64(s.QuickStats.GuestMemoryUsage) / float64(s.Config.MemorySizeMB) * 100
}

// snapshotStats walks the snapshot tree counting nodes and tracking the
// oldest creation time in days relative to now.
func snapshotStats(info *types.VirtualMachineSnapshotInfo, now time.Time) (int, float64) {
	if info == nil {
		return 0, 0
	}
	count := 0
	maxAge := 0.0
	var walk func(nodes []types.VirtualMachineSnapshotTree)
	walk = func(nodes []types.VirtualMachineSnapshotTree) {
		for _, n := range nodes {
			count++
			if age := now.Sub(n.CreateTime).Hours() / 24; age > maxAge {
				maxAge = age
			}
			walk(n.ChildSnapshotList)
		}
	}
	walk(info.RootSnapshotList)
	return count, maxAge
}
