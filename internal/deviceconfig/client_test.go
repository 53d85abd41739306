package deviceconfig

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const mockCaptureResponse = `{"bScheCap":1,"scheCapMode":1,"timedNodes":[{"day":7,"time":"08:00:00"}],"timedCount":1,"intervalValue":8,"intervalUnit":1,"bAlarmInCap":1,"bButtonCap":0,"camWarmupMs":3000}`

func TestNewClient(t *testing.T) {
	client := NewClient("192.168.1.1", 80)

	if client.BaseURL != "http://192.168.1.1:80" {
		t.Errorf("BaseURL = %s, want http://192.168.1.1:80", client.BaseURL)
	}
	if client.HTTPClient == nil {
		t.Fatal("HTTPClient should not be nil")
	}
	if client.HTTPClient.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", client.HTTPClient.Timeout, DefaultTimeout)
	}
	if client.Host() != "192.168.1.1" {
		t.Errorf("Host() = %s, want 192.168.1.1", client.Host())
	}
}

func TestDefaultClientWaitsForContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClientWithURL(server.URL)
	if client.HTTPClient.Timeout != 0 {
		t.Fatalf("Timeout = %v, want none", client.HTTPClient.Timeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	var params CaptureParams
	if err := client.Read(ctx, GetCapParam, &params); err == nil {
		t.Fatal("Read() should end with the context")
	}
}

func TestSetTimeout(t *testing.T) {
	client := NewClientWithURL("http://camera.local")
	client.SetTimeout(0)

	if client.HTTPClient.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0", client.HTTPClient.Timeout)
	}
}

func TestRead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/v1/capture/getCapParam" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "ne101-cfg/") {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Write([]byte(mockCaptureResponse))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	var params CaptureParams
	if err := client.Read(context.Background(), GetCapParam, &params); err != nil {
		t.Fatalf("Read() error: %v", err)
	}

	if !params.ScheduledCapture.Bool() || params.ScheduleMode != CaptureInterval {
		t.Errorf("schedule = %v/%d", params.ScheduledCapture, params.ScheduleMode)
	}
	if len(params.TimedNodes) != 1 || params.TimedNodes[0].Time != "08:00:00" {
		t.Errorf("TimedNodes = %+v", params.TimedNodes)
	}
	if params.CamWarmupMs != 3000 {
		t.Errorf("CamWarmupMs = %d, want 3000", params.CamWarmupMs)
	}
}

func TestReadTrailingPadding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"enable":1}` + "\x00\x00\x00"))
	}))
	defer server.Close()

	var ntp NTPSync
	if err := NewClientWithURL(server.URL).Read(context.Background(), GetDevNtpSync, &ntp); err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if !ntp.Enable.Bool() {
		t.Error("Enable should be set")
	}
}

func TestWrite(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s", ct)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"result":1000}`))
	}))
	defer server.Close()

	ack, err := NewClientWithURL(server.URL).Write(context.Background(), SetDevNtpSync, NTPSync{Enable: 1})
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if !ack.OK() {
		t.Errorf("ack = %+v, want OK", ack)
	}
	if got["enable"] != float64(1) {
		t.Errorf("body enable = %v, want 1", got["enable"])
	}
}

func TestWriteNilPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != "{}" {
			t.Errorf("body = %q, want {}", body)
		}
		w.Write([]byte(`{"result":1000}`))
	}))
	defer server.Close()

	if _, err := NewClientWithURL(server.URL).Write(context.Background(), SetDevSleep, nil); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
}

func TestUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("Content-Type = %s", ct)
		}
		if name := r.Header.Get(FileNameHeader); name != "ca.pem" {
			t.Errorf("%s = %q, want ca.pem", FileNameHeader, name)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "-----BEGIN CERTIFICATE-----" {
			t.Errorf("body = %q", body)
		}
		w.Write([]byte(`{"result":1000}`))
	}))
	defer server.Close()

	_, err := NewClientWithURL(server.URL).Upload(context.Background(), UploadMqttCa, "ca.pem", strings.NewReader("-----BEGIN CERTIFICATE-----"))
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
}

func TestUploadEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header[FileNameHeader]; ok {
			t.Errorf("unexpected %s header", FileNameHeader)
		}
		body, _ := io.ReadAll(r.Body)
		if len(body) != 0 {
			t.Errorf("body = %q, want empty", body)
		}
		w.Write([]byte(`{"result":1000}`))
	}))
	defer server.Close()

	if _, err := NewClientWithURL(server.URL).Upload(context.Background(), DeleteMqttKey, "", nil); err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
}

func TestUploadForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "fw.bin" || string(data) != "firmware" {
			t.Errorf("got %s %q", header.Filename, data)
		}
		w.Write([]byte(`{"result":1000}`))
	}))
	defer server.Close()

	_, err := NewClientWithURL(server.URL).UploadForm(context.Background(), SetDevUpgrade, "file", "fw.bin", strings.NewReader("firmware"))
	if err != nil {
		t.Fatalf("UploadForm() error: %v", err)
	}
}

func TestHTTPErrorCarriesDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid param"}`))
	}))
	defer server.Close()

	_, err := NewClientWithURL(server.URL).Write(context.Background(), SetCamParam, CameraParams{})
	if !IsHTTPError(err) {
		t.Fatalf("expected HTTP error, got %v", err)
	}
	devErr, _ := asDeviceError(err)
	if devErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d", devErr.StatusCode)
	}
	if devErr.Detail["message"] != "invalid param" {
		t.Errorf("Detail = %v", devErr.Detail)
	}
	if devErr.Endpoint != SetCamParam {
		t.Errorf("Endpoint = %s", devErr.Endpoint)
	}
	if !strings.Contains(GetShortErrorMessage(err), "invalid param") {
		t.Errorf("short message = %q", GetShortErrorMessage(err))
	}
}

func TestParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	var info DeviceInfo
	err := NewClientWithURL(server.URL).Read(context.Background(), GetDevInfo, &info)
	if !IsParseError(err) {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	var info DeviceInfo
	err := NewClientWithURL(url).Read(context.Background(), GetDevInfo, &info)
	if !IsNetworkError(err) {
		t.Errorf("expected network error, got %v", err)
	}
	if !IsTransportError(err) {
		t.Error("network error should count as a transport error")
	}
}

func TestSingleInFlightRequest(t *testing.T) {
	var inFlight, maxInFlight int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		w.Write([]byte(`{"result":1000}`))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Write(context.Background(), SetDevSleep, nil); err != nil {
				t.Errorf("Write() error: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxInFlight != 1 {
		t.Errorf("max concurrent requests = %d, want 1", maxInFlight)
	}
}

func TestCancelWhileWaiting(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"result":1000}`))
	}))
	defer server.Close()
	defer close(release)

	client := NewClientWithURL(server.URL)
	go client.Write(context.Background(), SetDevSleep, nil)
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.Write(ctx, SetDevSleep, nil)
	if err == nil {
		t.Fatal("expected error while the channel is busy")
	}
	if !IsNetworkError(err) {
		t.Errorf("expected network error, got %v", err)
	}
}
