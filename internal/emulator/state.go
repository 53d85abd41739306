package emulator

import (
	"github.com/muurk/ne101/internal/deviceconfig"
)

// Network is a Wi-Fi network the emulated camera can see. An empty
// Password means the network is open.
type Network struct {
	SSID     string
	RSSI     int
	Password string
}

// state is every parameter group the emulated camera holds.
type state struct {
	capture  deviceconfig.CaptureParams
	trigger  deviceconfig.TriggerParams
	upload   deviceconfig.UploadParams
	light    deviceconfig.LightParams
	camera   deviceconfig.CameraParams
	platform deviceconfig.PlatformParams
	networks []Network
	wifi     deviceconfig.WifiParams
	cellular deviceconfig.CellularParams
	cellStat deviceconfig.CellularStatus
	info     deviceconfig.DeviceInfo
	battery  deviceconfig.Battery
	ntp      deviceconfig.NTPSync
	time     deviceconfig.DeviceTime
	firmware []byte
	files    map[string][]byte
	asleep   bool
	commands []string
}

func defaultState() state {
	return state{
		capture: deviceconfig.CaptureParams{
			ScheduledCapture: 1,
			ScheduleMode:     deviceconfig.CaptureInterval,
			TimedNodes:       []deviceconfig.TimedNode{},
			IntervalValue:    8,
			IntervalUnit:     deviceconfig.UnitHour,
			AlarmInCapture:   0,
			ButtonCapture:    1,
			CamWarmupMs:      deviceconfig.DefaultCamWarmupMs,
		},
		trigger: deviceconfig.TriggerParams{
			Mode:        deviceconfig.TriggerDisabled,
			Sensitivity: deviceconfig.DefaultTriggerSens,
			Blind:       deviceconfig.DefaultTriggerBlind,
			Pulse:       deviceconfig.DefaultTriggerPulse,
			Window:      deviceconfig.DefaultTriggerWindow,
		},
		upload: deviceconfig.UploadParams{
			Mode:       deviceconfig.UploadImmediate,
			TimedNodes: []deviceconfig.TimedNode{},
			RetryCount: 3,
		},
		light: deviceconfig.LightParams{
			Mode:      deviceconfig.LightAuto,
			Value:     42,
			Threshold: 30,
			Duty:      50,
			StartTime: "23:00",
			EndTime:   "07:00",
		},
		camera: deviceconfig.CameraParams{
			AELevel:     0,
			AGC:         1,
			GainCeiling: 2,
			FrameSize:   21,
			Quality:     12,
		},
		platform: deviceconfig.PlatformParams{
			CurrentPlatformType: deviceconfig.PlatformMQTT,
			MQTT: deviceconfig.MQTTPlatform{
				Host:     "192.168.1.1",
				Port:     1883,
				Topic:    "NE101SensingCam/Snapshot",
				ClientID: "6622123145647890",
			},
		},
		networks: []Network{
			{SSID: "Office", RSSI: -52, Password: "correct horse"},
			{SSID: "Guest", RSSI: -71},
			{SSID: "Warehouse", RSSI: -90, Password: "forklift"},
		},
		cellular: deviceconfig.CellularParams{APN: "internet"},
		cellStat: deviceconfig.CellularStatus{
			NetworkStatus:  "Connected",
			ModemStatus:    "Ready",
			Model:          "EG915U",
			SignalLevel:    "-79 dBm",
			RegisterStatus: "Registered",
			NetworkType:    "LTE",
		},
		info: deviceconfig.DeviceInfo{
			NetMod:      "wifi",
			Name:        "NE101 Sensing Camera",
			MAC:         "24:DC:C3:00:11:22",
			SN:          "6622D12345670001",
			HardVersion: "V1.0",
			SoftVersion: "V1.1.0_r1",
			CountryCode: "US",
			Camera:      "CSI",
		},
		battery: deviceconfig.Battery{FreePercent: 87, HasBattery: 1},
		ntp:     deviceconfig.NTPSync{Enable: 1},
		files:   map[string][]byte{},
	}
}

func (s *state) network(ssid string) (Network, bool) {
	for _, n := range s.networks {
		if n.SSID == ssid {
			return n, true
		}
	}
	return Network{}, false
}

func (s *state) wifiList() deviceconfig.WifiList {
	list := deviceconfig.WifiList{Count: len(s.networks)}
	for _, n := range s.networks {
		list.Nodes = append(list.Nodes, deviceconfig.WifiNode{
			SSID:         n.SSID,
			RSSI:         n.RSSI,
			Authenticate: deviceconfig.FlagOf(n.Password != ""),
		})
	}
	return list
}
