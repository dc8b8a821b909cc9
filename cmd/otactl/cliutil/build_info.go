package cliutil

import (
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
)

type BuildInfo struct {
	GoOS          string `json:"go_os"`
	GoVersion     string `json:"go_version"`
	GoArch        string `json:"go_arch"`
	BuildType     string `json:"build_type"`
	OtactlVersion string `json:"otactl_version"`
	BuildTime     string `json:"build_time"`
}

func GetBuildInfo(buildType, version, buildTime string) *BuildInfo {
	return &BuildInfo{
		GoOS:          runtime.GOOS,
		GoVersion:     runtime.Version(),
		GoArch:        runtime.GOARCH,
		BuildType:     buildType,
		OtactlVersion: version,
		BuildTime:     buildTime,
	}
}

func (bi *BuildInfo) Log(log *zerolog.Logger) {
	log.Info().Msgf("Version %s", bi.OtactlVersion)
	if bi.BuildType != "" {
		log.Info().Msgf("Built%s", bi.GetBuildTypeMsg())
	}
	log.Info().Msgf("GOOS: %s, GOVersion: %s, GoArch: %s", bi.GoOS, bi.GoVersion, bi.GoArch)
}

func (bi *BuildInfo) Version() string {
	return bi.OtactlVersion
}

func (bi *BuildInfo) GetBuildTypeMsg() string {
	if bi.BuildType == "" {
		return ""
	}
	return fmt.Sprintf(" with %s", bi.BuildType)
}

func (bi *BuildInfo) UserAgent() string {
	return fmt.Sprintf("otactl/%s", bi.OtactlVersion)
}

// String is the long version text printed by the version command.
func (bi *BuildInfo) String() string {
	return fmt.Sprintf("otactl %s (built %s%s) %s %s_%s", bi.OtactlVersion, bi.BuildTime, bi.GetBuildTypeMsg(), bi.GoVersion, bi.GoOS, bi.GoArch)
}
