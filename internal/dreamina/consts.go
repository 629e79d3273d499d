package dreamina

import "time"

type Region string

const (
	RegionCN Region = "cn"
	RegionUS Region = "US"
	RegionHK Region = "HK"
	RegionJP Region = "JP"
	RegionSG Region = "SG"
)

const (
	PlatformCode = "7"
	VersionCode  = "5.8.0"

	DraftVersion    = "3.3.7"
	DraftMinVersion = "3.0.2"

	DefaultImageModel   = "jimeng-4.5"
	DefaultImageModelUS = "jimeng-4.5"

	// fixed salts of the lightweight request signature, lifted from the
	// web client. When upstream rotates them only these two change.
	signSaltHead = "9e2c"
	signSaltTail = "11ac"
)

// HostBucket holds the api host pair of one regional deployment, the
// commerce endpoints live on a separate host.
type HostBucket struct {
	Base     string
	Commerce string
}

type HostTable map[Region]HostBucket

// HK/JP/SG share one regional edge in Singapore.
var DefaultHosts = HostTable{
	RegionCN: {Base: "https://jimeng.jianying.com", Commerce: "https://jimeng.jianying.com"},
	RegionUS: {Base: "https://dreamina-api.us.capcut.com", Commerce: "https://commerce.us.capcut.com"},
	RegionHK: {Base: "https://mweb-api-sg.capcut.com", Commerce: "https://commerce-api-sg.capcut.com"},
	RegionJP: {Base: "https://mweb-api-sg.capcut.com", Commerce: "https://commerce-api-sg.capcut.com"},
	RegionSG: {Base: "https://mweb-api-sg.capcut.com", Commerce: "https://commerce-api-sg.capcut.com"},
}

var assistantIDs = map[Region]int{
	RegionCN: 513695,
	RegionUS: 513641,
	RegionHK: 513641,
	RegionJP: 513641,
	RegionSG: 513641,
}

// StorageBucket holds the object storage endpoint and the signing region
// used by the derived-key signature, which differs from the api region.
type StorageBucket struct {
	Host          string
	SigningRegion string
}

type StorageTable map[Region]StorageBucket

var DefaultStorage = StorageTable{
	RegionCN: {Host: "https://imagex.bytedanceapi.com", SigningRegion: "cn-north-1"},
	RegionUS: {Host: "https://imagex-us-east-1.bytevcloudapi.com", SigningRegion: "us-east-1"},
	RegionHK: {Host: "https://imagex-ap-singapore-1.bytevcloudapi.com", SigningRegion: "ap-singapore-1"},
	RegionJP: {Host: "https://imagex-ap-singapore-1.bytevcloudapi.com", SigningRegion: "ap-singapore-1"},
	RegionSG: {Host: "https://imagex-ap-singapore-1.bytevcloudapi.com", SigningRegion: "ap-singapore-1"},
}

// ImageModelMap resolves public model names for the domestic deployment.
var ImageModelMap = map[string]string{
	"jimeng-4.5":     "high_aes_general_v40l",
	"jimeng-4.1":     "high_aes_general_v41",
	"jimeng-4.0":     "high_aes_general_v40",
	"jimeng-3.1":     "high_aes_general_v30l_art_fangzhou:general_v3.0_18b",
	"jimeng-3.0":     "high_aes_general_v30l:general_v3.0_18b",
	"jimeng-2.1":     "high_aes_general_v21_L:general_v2.1_L",
	"jimeng-2.0-pro": "high_aes_general_v20_L:general_v2.0_L",
	"jimeng-2.0":     "high_aes_general_v20:general_v2.0",
	"jimeng-1.4":     "high_aes_general_v14:general_v1.4",
	"jimeng-xl-pro":  "text2img_xl_sft",
	// legacy names
	"dreamina-4.5": "high_aes_general_v40l",
	"dreamina-4.1": "high_aes_general_v41",
	"dreamina-4.0": "high_aes_general_v40",
}

// ImageModelMapUS resolves public model names for the international sites.
var ImageModelMapUS = map[string]string{
	"jimeng-4.5":    "high_aes_general_v40l",
	"jimeng-4.1":    "high_aes_general_v41",
	"jimeng-4.0":    "high_aes_general_v40",
	"jimeng-3.0":    "high_aes_general_v30l:general_v3.0_18b",
	"nanobanana":    "external_model_gemini_flash_image_v25",
	"nanobananapro": "dreamina_image_lib_1",
	// legacy names
	"dreamina-4.5": "high_aes_general_v40l",
	"dreamina-4.1": "high_aes_general_v41",
	"dreamina-4.0": "high_aes_general_v40",
}

type ratioConfig struct {
	Width  int
	Height int
	Ratio  int
}

// ResolutionOptions maps resolution class -> aspect ratio -> pixel triple.
var ResolutionOptions = map[string]map[string]ratioConfig{
	"1k": {
		"1:1":  {Width: 1024, Height: 1024, Ratio: 1},
		"4:3":  {Width: 768, Height: 1024, Ratio: 4},
		"3:4":  {Width: 1024, Height: 768, Ratio: 2},
		"16:9": {Width: 1024, Height: 576, Ratio: 3},
		"9:16": {Width: 576, Height: 1024, Ratio: 5},
		"3:2":  {Width: 1024, Height: 682, Ratio: 7},
		"2:3":  {Width: 682, Height: 1024, Ratio: 6},
		"21:9": {Width: 1195, Height: 512, Ratio: 8},
	},
	"2k": {
		"1:1":  {Width: 2048, Height: 2048, Ratio: 1},
		"4:3":  {Width: 2304, Height: 1728, Ratio: 4},
		"3:4":  {Width: 1728, Height: 2304, Ratio: 2},
		"16:9": {Width: 2560, Height: 1440, Ratio: 3},
		"9:16": {Width: 1440, Height: 2560, Ratio: 5},
		"3:2":  {Width: 2496, Height: 1664, Ratio: 7},
		"2:3":  {Width: 1664, Height: 2496, Ratio: 6},
		"21:9": {Width: 3024, Height: 1296, Ratio: 8},
	},
	"4k": {
		"1:1":  {Width: 4096, Height: 4096, Ratio: 101},
		"4:3":  {Width: 4608, Height: 3456, Ratio: 104},
		"3:4":  {Width: 3456, Height: 4608, Ratio: 102},
		"16:9": {Width: 5120, Height: 2880, Ratio: 103},
		"9:16": {Width: 2880, Height: 5120, Ratio: 105},
		"3:2":  {Width: 4992, Height: 3328, Ratio: 107},
		"2:3":  {Width: 3328, Height: 4992, Ratio: 106},
		"21:9": {Width: 6048, Height: 2592, Ratio: 108},
	},
}

const (
	defaultResolution = "2k"
	defaultRatio      = "1:1"
)

// RetryPolicy bounds the dispatcher retry loop, the delay is constant.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 3,
	Delay:      5 * time.Second,
}

// nonRetryableErrorCodes is the single authoritative denylist, permanent
// errors abort the retry loop immediately. 1006-1015 cover the balance
// and auth families, 4001/5000 the commerce endpoints.
var nonRetryableErrorCodes = map[int]struct{}{
	1006: {}, 1007: {}, 1008: {}, 1009: {}, 1010: {},
	1011: {}, 1012: {}, 1013: {}, 1014: {}, 1015: {},
	4001: {}, 5000: {},
}

// fakeHeaders is the browser fingerprint the web client sends.
var fakeHeaders = map[string]string{
	// only codecs the dispatcher can undo are advertised
	"Accept":             "application/json, text/plain, */*",
	"Accept-Encoding":    "gzip, deflate",
	"Accept-Language":    "zh-CN,zh;q=0.9",
	"Cache-Control":      "no-cache",
	"Content-Type":       "application/json",
	"Appvr":              VersionCode,
	"Pragma":             "no-cache",
	"Priority":           "u=1, i",
	"Pf":                 PlatformCode,
	"Sec-Ch-Ua":          `"Google Chrome";v="142", "Chromium";v="142", "Not_A Brand";v="99"`,
	"Sec-Ch-Ua-Mobile":   "?0",
	"Sec-Ch-Ua-Platform": `"Windows"`,
	"Sec-Fetch-Dest":     "empty",
	"Sec-Fetch-Mode":     "cors",
	"Sec-Fetch-Site":     "same-origin",
	"User-Agent":         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36",
}
