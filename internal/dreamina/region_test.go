package dreamina

import "testing"

func TestParseRegionFromToken(t *testing.T) {
	tests := []struct {
		name          string
		refreshToken  string
		wantRegion    Region
		wantToken     string
		international bool
	}{
		{name: "us prefix", refreshToken: "us-abc123", wantRegion: RegionUS, wantToken: "abc123", international: true},
		{name: "hk prefix", refreshToken: "hk-abc123", wantRegion: RegionHK, wantToken: "abc123", international: true},
		{name: "jp prefix", refreshToken: "jp-abc123", wantRegion: RegionJP, wantToken: "abc123", international: true},
		{name: "sg prefix", refreshToken: "sg-abc123", wantRegion: RegionSG, wantToken: "abc123", international: true},
		{name: "uppercase prefix", refreshToken: "US-abc123", wantRegion: RegionUS, wantToken: "abc123", international: true},
		{name: "no prefix", refreshToken: "abc123", wantRegion: RegionCN, wantToken: "abc123"},
		{name: "unknown prefix", refreshToken: "de-abc123", wantRegion: RegionCN, wantToken: "de-abc123"},
		{name: "prefix-like token body", refreshToken: "aus-abc123", wantRegion: RegionCN, wantToken: "aus-abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseRegionFromToken(tt.refreshToken)
			if info.Region != tt.wantRegion {
				t.Fatalf("region = %q, want %q", info.Region, tt.wantRegion)
			}
			if info.Token != tt.wantToken {
				t.Fatalf("token = %q, want %q", info.Token, tt.wantToken)
			}
			if info.IsInternational != tt.international {
				t.Fatalf("isInternational = %v, want %v", info.IsInternational, tt.international)
			}
			if info.IsCN == info.IsInternational {
				t.Fatalf("isCN must be the inverse of isInternational")
			}
			flags := 0
			for _, flag := range []bool{info.IsUS, info.IsHK, info.IsJP, info.IsSG} {
				if flag {
					flags++
				}
			}
			if info.IsInternational && flags != 1 {
				t.Fatalf("expected exactly one regional flag, got %d", flags)
			}
			if info.IsCN && flags != 0 {
				t.Fatalf("domestic profile must set no regional flag, got %d", flags)
			}
		})
	}
}

func TestStoreRegionSharesHKBucket(t *testing.T) {
	for _, refreshToken := range []string{"hk-t", "jp-t", "sg-t"} {
		if got := ParseRegionFromToken(refreshToken).StoreRegion(); got != "hk" {
			t.Fatalf("store region for %q = %q, want hk", refreshToken, got)
		}
	}
	if got := ParseRegionFromToken("us-t").StoreRegion(); got != "us" {
		t.Fatalf("store region for us = %q", got)
	}
	if got := ParseRegionFromToken("t").StoreRegion(); got != "cn-gd" {
		t.Fatalf("store region for cn = %q", got)
	}
}

func TestRefererByRegion(t *testing.T) {
	if got := ParseRegionFromToken("us-t").Referer(); got != "https://dreamina.capcut.com/" {
		t.Fatalf("international referer = %q", got)
	}
	if got := ParseRegionFromToken("t").Referer(); got != "https://jimeng.jianying.com/ai-tool/image/generate" {
		t.Fatalf("domestic referer = %q", got)
	}
}
