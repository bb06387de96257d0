package telemetry

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/xping/xping-go/version"
)

// EnvironmentInfo is the machine/runtime snapshot attached to a session.
// The backend uses it to segment results (OS, CI vs local, machine class).
type EnvironmentInfo struct {
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	Platform        string `json:"platform"`
	PlatformVersion string `json:"platform_version"`
	KernelVersion   string `json:"kernel_version"`
	Architecture    string `json:"architecture"`
	RuntimeVersion  string `json:"runtime_version"`
	LogicalCPUs     int    `json:"logical_cpus"`
	TotalMemoryMB   uint64 `json:"total_memory_mb"`
	CI              bool   `json:"ci"`
	SDKVersion      string `json:"sdk_version"`
}

// ciEnvVars are the well-known markers set by CI providers. Presence of
// any one of them flags the session as a CI run.
var ciEnvVars = []string{
	"CI",
	"GITHUB_ACTIONS",
	"TF_BUILD",
	"JENKINS_URL",
	"GITLAB_CI",
	"BUILDKITE",
	"CIRCLECI",
	"TEAMCITY_VERSION",
}

// CaptureEnvironment probes the host for the session environment snapshot.
// It never fails: any probe error leaves the corresponding fields at their
// zero values, because telemetry must not block on a broken /proc or WMI.
func CaptureEnvironment() EnvironmentInfo {
	info := EnvironmentInfo{
		OS:             runtime.GOOS,
		Architecture:   runtime.GOARCH,
		RuntimeVersion: runtime.Version(),
		LogicalCPUs:    runtime.NumCPU(),
		CI:             detectCI(),
		SDKVersion:     version.Version,
	}

	if hostInfo, err := host.Info(); err == nil {
		info.Hostname = hostInfo.Hostname
		info.Platform = hostInfo.Platform
		info.PlatformVersion = hostInfo.PlatformVersion
		info.KernelVersion = hostInfo.KernelVersion
	} else if name, err := os.Hostname(); err == nil {
		info.Hostname = name
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemoryMB = vm.Total / (1024 * 1024)
	}

	return info
}

func detectCI() bool {
	for _, key := range ciEnvVars {
		if v := os.Getenv(key); v != "" && v != "false" {
			return true
		}
	}
	return false
}
