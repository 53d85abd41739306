package emulator

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/logging"
)

// Option configures an Emulator.
type Option func(*Emulator)

// WithLatency delays every response by d.
func WithLatency(d time.Duration) Option {
	return func(e *Emulator) { e.latency = d }
}

// WithNetworks replaces the scanned Wi-Fi list.
func WithNetworks(networks ...Network) Option {
	return func(e *Emulator) { e.state.networks = networks }
}

// WithDeviceInfo replaces the device identity.
func WithDeviceInfo(info deviceconfig.DeviceInfo) Option {
	return func(e *Emulator) { e.state.info = info }
}

// injected is a failure armed for one endpoint.
type injected struct {
	status int // HTTP status, or 0 to answer 200 with result
	result int
}

// Emulator is an in-memory NE101 configuration server.
type Emulator struct {
	mu       sync.Mutex
	state    state
	failures map[deviceconfig.Endpoint]injected
	counts   map[deviceconfig.Endpoint]int
	log      []deviceconfig.Endpoint
	latency  time.Duration

	inflight   atomic.Int32
	violations atomic.Int64

	router chi.Router
}

// New creates an emulator seeded with factory defaults.
func New(opts ...Option) *Emulator {
	e := &Emulator{
		state:    defaultState(),
		failures: make(map[deviceconfig.Endpoint]injected),
		counts:   make(map[deviceconfig.Endpoint]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.router = e.routes()
	return e
}

// Handler returns the HTTP handler serving the device API.
func (e *Emulator) Handler() http.Handler {
	return e.router
}

func (e *Emulator) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(e.singleRequest)

	r.Route(deviceconfig.APIPrefix, func(r chi.Router) {
		get := func(ep deviceconfig.Endpoint, read func(s *state) any) {
			r.Get("/"+string(ep), e.serve(ep, func(w http.ResponseWriter, _ *http.Request, s *state) {
				respondJSON(w, http.StatusOK, read(s))
			}))
		}
		post := func(ep deviceconfig.Endpoint, h handlerFunc) {
			r.Post("/"+string(ep), e.serve(ep, h))
		}

		get(deviceconfig.GetCamParam, func(s *state) any { return s.camera })
		get(deviceconfig.GetLightParam, func(s *state) any { return s.light })
		get(deviceconfig.GetCapParam, func(s *state) any { return s.capture })
		get(deviceconfig.GetTriggerParam, func(s *state) any { return s.trigger })
		get(deviceconfig.GetUploadParam, func(s *state) any { return s.upload })
		get(deviceconfig.GetPlatformParam, func(s *state) any { return s.platform.Submission() })
		get(deviceconfig.GetWifiList, func(s *state) any { return s.wifiList() })
		get(deviceconfig.GetWifiParam, func(s *state) any { return s.wifi })
		get(deviceconfig.GetCellularParam, func(s *state) any { return s.cellular })
		get(deviceconfig.GetCellularStatus, func(s *state) any { return s.cellStat })
		get(deviceconfig.GetDevInfo, func(s *state) any { return s.info })
		get(deviceconfig.GetDevBattery, func(s *state) any { return s.battery })
		get(deviceconfig.GetDevNtpSync, func(s *state) any { return s.ntp })

		post(deviceconfig.SetCamParam, decodeInto(func(s *state, v deviceconfig.CameraParams) { s.camera = v }))
		post(deviceconfig.SetLightParam, decodeInto(func(s *state, v deviceconfig.LightParams) {
			v.Value = s.light.Value
			s.light = v
		}))
		post(deviceconfig.SetCapParam, decodeInto(func(s *state, v deviceconfig.CaptureParams) { s.capture = v }))
		post(deviceconfig.SetTriggerParam, decodeInto(func(s *state, v deviceconfig.TriggerParams) { s.trigger = v }))
		post(deviceconfig.SetUploadParam, decodeInto(func(s *state, v deviceconfig.UploadParams) { s.upload = v }))
		post(deviceconfig.SetPlatformParam, decodeInto(func(s *state, v deviceconfig.PlatformParams) {
			v.Normalize()
			v.MQTT.IsConnected = s.platform.MQTT.IsConnected
			s.platform = v
		}))
		post(deviceconfig.SetCellularParam, decodeInto(func(s *state, v deviceconfig.CellularParams) { s.cellular = v }))
		post(deviceconfig.SetDevNtpSync, decodeInto(func(s *state, v deviceconfig.NTPSync) { s.ntp = v }))
		post(deviceconfig.SetDevTime, decodeInto(func(s *state, v deviceconfig.DeviceTime) { s.time = v }))
		post(deviceconfig.SetDevInfo, decodeInto(mergeDeviceInfo))
		post(deviceconfig.SetDevSleep, func(w http.ResponseWriter, _ *http.Request, s *state) {
			s.asleep = true
			respondResult(w, deviceconfig.ResultOK)
		})

		post(deviceconfig.SetWifiParam, handleWifiConnect)
		post(deviceconfig.SendCellularCommand, handleCellularCommand)
		post(deviceconfig.SetDevUpgrade, handleUpgrade)

		post(deviceconfig.UploadMqttCa, handleFileUpload(func(m *deviceconfig.MQTTPlatform) *string { return &m.CAName }))
		post(deviceconfig.UploadMqttCert, handleFileUpload(func(m *deviceconfig.MQTTPlatform) *string { return &m.CertName }))
		post(deviceconfig.UploadMqttKey, handleFileUpload(func(m *deviceconfig.MQTTPlatform) *string { return &m.KeyName }))
		post(deviceconfig.DeleteMqttCa, handleFileDelete(func(m *deviceconfig.MQTTPlatform) *string { return &m.CAName }))
		post(deviceconfig.DeleteMqttCert, handleFileDelete(func(m *deviceconfig.MQTTPlatform) *string { return &m.CertName }))
		post(deviceconfig.DeleteMqttKey, handleFileDelete(func(m *deviceconfig.MQTTPlatform) *string { return &m.KeyName }))
	})

	return r
}

// singleRequest answers 503 to any request that overlaps another one.
func (e *Emulator) singleRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !e.inflight.CompareAndSwap(0, 1) {
			e.violations.Add(1)
			logging.Warn("Concurrent request rejected", zap.String("path", r.URL.Path))
			respondJSON(w, http.StatusServiceUnavailable, map[string]any{"message": "device busy"})
			return
		}
		defer e.inflight.Store(0)
		next.ServeHTTP(w, r)
	})
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, s *state)

// serve records the request, applies latency and injected failures, and
// runs h with the state locked.
func (e *Emulator) serve(ep deviceconfig.Endpoint, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if e.latency > 0 {
			time.Sleep(e.latency)
		}

		e.mu.Lock()
		defer e.mu.Unlock()

		e.counts[ep]++
		e.log = append(e.log, ep)
		logging.Debug("Emulator request", zap.String("endpoint", string(ep)), zap.String("method", r.Method))

		if f, ok := e.failures[ep]; ok {
			if f.status != 0 {
				respondJSON(w, f.status, map[string]any{"message": fmt.Sprintf("injected failure on %s", ep)})
				return
			}
			// Drain the body so uploads behave like a real rejection.
			_, _ = io.Copy(io.Discard, r.Body)
			respondResult(w, f.result)
			return
		}

		h(w, r, &e.state)
	}
}

func decodeInto[T any](apply func(s *state, v T)) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request, s *state) {
		var v T
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			respondJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid request body"})
			return
		}
		apply(s, v)
		respondResult(w, deviceconfig.ResultOK)
	}
}

func mergeDeviceInfo(s *state, v deviceconfig.DeviceInfo) {
	if v.Name != "" {
		s.info.Name = v.Name
	}
	if v.CountryCode != "" {
		s.info.CountryCode = v.CountryCode
	}
}

func handleWifiConnect(w http.ResponseWriter, r *http.Request, s *state) {
	var req deviceconfig.WifiConnect
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid request body"})
		return
	}
	n, ok := s.network(req.SSID)
	if !ok || n.Password != req.Password {
		s.wifi.IsConnected = 0
		respondResult(w, deviceconfig.ResultWifiDisconnected)
		return
	}
	s.wifi = deviceconfig.WifiParams{SSID: req.SSID, Password: req.Password, IsConnected: 1}
	respondResult(w, deviceconfig.ResultWifiConnected)
}

func handleCellularCommand(w http.ResponseWriter, r *http.Request, s *state) {
	var req deviceconfig.CellularCommand
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"message": "invalid request body"})
		return
	}
	s.commands = append(s.commands, req.Command)
	message := "OK"
	switch req.Command {
	case "AT+CSQ":
		message = "+CSQ: 17,99\r\nOK"
	case "AT+CGMR":
		message = s.cellStat.Version + "\r\nOK"
	}
	respondJSON(w, http.StatusOK, deviceconfig.Ack{Result: deviceconfig.ResultOK, Message: message})
}

func handleUpgrade(w http.ResponseWriter, r *http.Request, s *state) {
	data, err := io.ReadAll(r.Body)
	if err != nil || len(data) == 0 {
		respondResult(w, deviceconfig.ResultUpgradeFailed)
		return
	}
	s.firmware = data
	respondResult(w, deviceconfig.ResultOK)
}

func handleFileUpload(slot func(*deviceconfig.MQTTPlatform) *string) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request, s *state) {
		name := r.Header.Get(deviceconfig.FileNameHeader)
		data, err := io.ReadAll(r.Body)
		if err != nil || len(data) == 0 || name == "" {
			respondJSON(w, http.StatusBadRequest, map[string]any{"message": "missing file"})
			return
		}
		*slot(&s.platform.MQTT) = name
		s.files[name] = data
		respondResult(w, deviceconfig.ResultOK)
	}
}

func handleFileDelete(slot func(*deviceconfig.MQTTPlatform) *string) handlerFunc {
	return func(w http.ResponseWriter, _ *http.Request, s *state) {
		name := slot(&s.platform.MQTT)
		delete(s.files, *name)
		*name = ""
		respondResult(w, deviceconfig.ResultOK)
	}
}

func respondResult(w http.ResponseWriter, result int) {
	respondJSON(w, http.StatusOK, deviceconfig.Ack{Result: result})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode emulator response", zap.Error(err))
	}
}
