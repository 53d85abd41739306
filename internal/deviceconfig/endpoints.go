package deviceconfig

// APIPrefix is the versioned path every parameter endpoint lives under.
const APIPrefix = "/api/v1"

// Endpoint names a device API path relative to APIPrefix.
type Endpoint string

// Path returns the absolute request path for e.
func (e Endpoint) Path() string {
	return APIPrefix + "/" + string(e)
}

// Image endpoints
const (
	GetCamParam   Endpoint = "image/getCamParam"
	SetCamParam   Endpoint = "image/setCamParam"
	GetLightParam Endpoint = "image/getLightParam"
	SetLightParam Endpoint = "image/setLightParam"
)

// Capture endpoints
const (
	GetCapParam     Endpoint = "capture/getCapParam"
	SetCapParam     Endpoint = "capture/setCapParam"
	GetTriggerParam Endpoint = "capture/getTriggerParam"
	SetTriggerParam Endpoint = "capture/setTriggerParam"
	GetUploadParam  Endpoint = "capture/getUploadParam"
	SetUploadParam  Endpoint = "capture/setUploadParam"
)

// Network endpoints
const (
	GetPlatformParam    Endpoint = "network/getPlatformParam"
	SetPlatformParam    Endpoint = "network/setPlatformParam"
	GetWifiList         Endpoint = "network/getWifiList"
	GetWifiParam        Endpoint = "network/getWifiParam"
	SetWifiParam        Endpoint = "network/setWifiParam"
	GetCellularParam    Endpoint = "network/getCellularParam"
	SetCellularParam    Endpoint = "network/setCellularParam"
	SendCellularCommand Endpoint = "network/sendCellularCommand"
	GetCellularStatus   Endpoint = "network/getCellularStatus"

	UploadMqttCa   Endpoint = "network/uploadMqttCa"
	UploadMqttCert Endpoint = "network/uploadMqttCert"
	UploadMqttKey  Endpoint = "network/uploadMqttKey"
	DeleteMqttCa   Endpoint = "network/deleteMqttCa"
	DeleteMqttCert Endpoint = "network/deleteMqttCert"
	DeleteMqttKey  Endpoint = "network/deleteMqttKey"
)

// System endpoints
const (
	GetDevInfo    Endpoint = "system/getDevInfo"
	SetDevInfo    Endpoint = "system/setDevInfo"
	GetDevBattery Endpoint = "system/getDevBattery"
	SetDevUpgrade Endpoint = "system/setDevUpgrade"
	GetDevNtpSync Endpoint = "system/getDevNtpSync"
	SetDevNtpSync Endpoint = "system/setDevNtpSync"
	SetDevSleep   Endpoint = "system/setDevSleep"
	SetDevTime    Endpoint = "system/setDevTime"
)

// Result codes carried in the "result" field of a write acknowledgement.
const (
	ResultOK               = 1000
	ResultWifiConnected    = 1001
	ResultWifiDisconnected = 1002
	ResultUpgradeFailed    = 1003
)

// ResultText describes a result code.
func ResultText(code int) string {
	switch code {
	case ResultOK:
		return "ok"
	case ResultWifiConnected:
		return "wifi connected"
	case ResultWifiDisconnected:
		return "wifi disconnected"
	case ResultUpgradeFailed:
		return "upgrade failed"
	default:
		return "unknown result"
	}
}
