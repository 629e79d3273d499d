package dreamina

import "strings"

// RegionInfo is the deployment profile derived from a credential string.
// It is recomputed on every call and never persisted.
type RegionInfo struct {
	IsUS            bool
	IsHK            bool
	IsJP            bool
	IsSG            bool
	IsInternational bool
	IsCN            bool
	Region          Region
	Token           string
}

// ParseRegionFromToken classifies a credential by its optional two-letter
// prefix (us-, hk-, jp-, sg-) and strips the prefix from the token.
// Unrecognized prefixes fall back to the domestic deployment.
func ParseRegionFromToken(refreshToken string) RegionInfo {
	lowered := strings.ToLower(refreshToken)
	info := RegionInfo{
		IsUS: strings.HasPrefix(lowered, "us-"),
		IsHK: strings.HasPrefix(lowered, "hk-"),
		IsJP: strings.HasPrefix(lowered, "jp-"),
		IsSG: strings.HasPrefix(lowered, "sg-"),
	}
	info.IsInternational = info.IsUS || info.IsHK || info.IsJP || info.IsSG
	info.IsCN = !info.IsInternational

	info.Token = refreshToken
	if info.IsInternational {
		info.Token = refreshToken[3:]
	}

	switch {
	case info.IsUS:
		info.Region = RegionUS
	case info.IsHK:
		info.Region = RegionHK
	case info.IsJP:
		info.Region = RegionJP
	case info.IsSG:
		info.Region = RegionSG
	default:
		info.Region = RegionCN
	}
	return info
}

func (r RegionInfo) AssistantID() int {
	return assistantIDs[r.Region]
}

// StoreRegion is the cookie store-region flag, JP and SG ride the HK value.
func (r RegionInfo) StoreRegion() string {
	switch {
	case r.IsUS:
		return "us"
	case r.IsHK, r.IsJP, r.IsSG:
		return "hk"
	default:
		return "cn-gd"
	}
}

func (r RegionInfo) Referer() string {
	if r.IsInternational {
		return "https://dreamina.capcut.com/"
	}
	return "https://jimeng.jianying.com/ai-tool/image/generate"
}
