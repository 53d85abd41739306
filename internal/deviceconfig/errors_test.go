package deviceconfig

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"testing"
)

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		et   ErrorType
		want string
	}{
		{ErrTypeNetwork, "Network Error"},
		{ErrTypeHTTP, "HTTP Error"},
		{ErrTypeParse, "Parse Error"},
		{ErrTypeValidation, "Validation Error"},
		{ErrTypeDevice, "Device Error"},
		{ErrTypeTimeout, "Timeout"},
		{ErrorType(99), "ErrorType(99)"},
	}
	for _, tt := range tests {
		if got := tt.et.String(); got != tt.want {
			t.Errorf("ErrorType(%d).String() = %q, want %q", tt.et, got, tt.want)
		}
	}
}

func TestDeviceErrorMessage(t *testing.T) {
	err := NewFieldError("port", "must be 1-65535, got 0")
	if err.Error() != "Validation Error: port: must be 1-65535, got 0" {
		t.Errorf("Error() = %q", err.Error())
	}

	cause := errors.New("reset")
	wrapped := NewNetworkError("read failed", cause)
	if !errors.Is(wrapped, cause) {
		t.Error("network error should unwrap to its cause")
	}
}

func TestClassifyNetworkError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    ErrorType
		subtype NetworkErrorSubtype
	}{
		{"timeout", os.ErrDeadlineExceeded, ErrTypeTimeout, NetworkErrorTimeout},
		{"context deadline", context.DeadlineExceeded, ErrTypeTimeout, NetworkErrorTimeout},
		{"dns", &net.DNSError{Name: "camera.local"}, ErrTypeDNS, NetworkErrorDNS},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, ErrTypeConnectionRefused, NetworkErrorConnectionRefused},
		{"host unreachable", &net.OpError{Op: "dial", Err: syscall.EHOSTUNREACH}, ErrTypeNetwork, NetworkErrorHostUnreachable},
		{"net unreachable", &net.OpError{Op: "dial", Err: syscall.ENETUNREACH}, ErrTypeNetwork, NetworkErrorNetworkUnreachable},
		{"generic", errors.New("broken pipe"), ErrTypeNetwork, NetworkErrorGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyNetworkError(tt.err, "192.168.1.1")
			if got.Type != tt.want {
				t.Errorf("Type = %v, want %v", got.Type, tt.want)
			}
			if got.NetworkSubtype != tt.subtype {
				t.Errorf("NetworkSubtype = %v, want %v", got.NetworkSubtype, tt.subtype)
			}
			if got.Host != "192.168.1.1" {
				t.Errorf("Host = %q", got.Host)
			}
		})
	}

	if ClassifyNetworkError(nil, "") != nil {
		t.Error("ClassifyNetworkError(nil) should be nil")
	}
}

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("capture: %w", NewResultError(SetCapParam, 1002))
	if !IsDeviceError(err) {
		t.Error("IsDeviceError should match a wrapped device error")
	}
	if IsTransportError(err) {
		t.Error("a device error is not a transport error")
	}

	if !IsValidationError(fmt.Errorf("save: %w", NewValidationError("bad"))) {
		t.Error("IsValidationError should match a wrapped validation error")
	}
	if IsNetworkError(errors.New("plain")) {
		t.Error("plain error is not a network error")
	}
}

func TestFieldErrors(t *testing.T) {
	err := errors.Join(
		NewFieldError("host", "is required"),
		nil,
		NewFieldError("port", "must be 1-65535, got 0"),
		errors.New("unrelated"),
	)
	fields := FieldErrors(err)
	if len(fields) != 2 {
		t.Fatalf("got %d field errors, want 2", len(fields))
	}
	if fields[0].Field != "host" || fields[1].Field != "port" {
		t.Errorf("fields = %s, %s", fields[0].Field, fields[1].Field)
	}
	if FieldErrors(nil) != nil {
		t.Error("FieldErrors(nil) should be empty")
	}
}

func TestShortMessagesAndHints(t *testing.T) {
	errs := []error{
		ClassifyNetworkError(os.ErrDeadlineExceeded, "192.168.1.1"),
		ClassifyNetworkError(&net.OpError{Err: syscall.ECONNREFUSED}, ""),
		ClassifyNetworkError(&net.DNSError{Name: "x"}, ""),
		ClassifyNetworkError(&net.OpError{Err: syscall.EHOSTUNREACH}, "192.168.1.1"),
		NewHTTPError(503, "busy", nil),
		NewHTTPError(404, "missing", nil),
		NewParseError("bad json", errors.New("eof")),
		NewResultError(SetDevUpgrade, ResultUpgradeFailed),
		NewFieldError("topic", "is required"),
	}
	for _, err := range errs {
		if GetShortErrorMessage(err) == "" {
			t.Errorf("empty short message for %v", err)
		}
		if GetTroubleshootingHint(err) == "" {
			t.Errorf("empty hint for %v", err)
		}
	}

	if got := GetShortErrorMessage(NewResultError(SetDevUpgrade, ResultUpgradeFailed)); !strings.Contains(got, "upgrade failed") {
		t.Errorf("short message = %q", got)
	}
	if got := GetShortErrorMessage(errors.New("plain")); got != "plain" {
		t.Errorf("short message for plain error = %q", got)
	}
}

func TestDetailMessage(t *testing.T) {
	if got := detailMessage(map[string]any{"b": 2, "a": 1}); got != "a=1 b=2" {
		t.Errorf("detailMessage = %q", got)
	}
	if got := detailMessage(map[string]any{"msg": "busy"}); got != "busy" {
		t.Errorf("detailMessage = %q", got)
	}
	if got := detailMessage(nil); got != "" {
		t.Errorf("detailMessage(nil) = %q", got)
	}
}
