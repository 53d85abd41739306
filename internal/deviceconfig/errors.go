package deviceconfig

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"sort"
	"strings"
	"syscall"
)

// Error types for device configuration operations

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (connection reset, unreachable, etc.)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeHTTP indicates the device answered with a non-2xx status
	ErrTypeHTTP
	// ErrTypeParse indicates a parsing error (malformed JSON, invalid response)
	ErrTypeParse
	// ErrTypeValidation indicates a client-side check rejected a value
	ErrTypeValidation
	// ErrTypeDevice indicates a well-formed answer carrying a failure result code
	ErrTypeDevice
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the device refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
	// ErrTypeUnknown indicates an unknown or unexpected error
	ErrTypeUnknown
)

// NetworkErrorSubtype provides more specific network error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeDevice:
		return "Device Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError represents an error that occurred during device communication
type DeviceError struct {
	Type           ErrorType           // Category of error
	Message        string              // Human-readable error message
	StatusCode     int                 // HTTP status code (if applicable)
	Err            error               // Underlying error (if any)
	NetworkSubtype NetworkErrorSubtype // More specific network error type
	Host           string              // Device host (for context)
	Endpoint       Endpoint            // Endpoint the request targeted
	Field          string              // Offending field for validation errors
	Result         int                 // Device result code for device errors
	Detail         map[string]any      // Parsed JSON body of a rejected request
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes an error and returns a more specific error type
func ClassifyNetworkError(err error, host string) *DeviceError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded) {
		return &DeviceError{
			Type:           ErrTypeTimeout,
			Message:        "Request timed out",
			Err:            err,
			NetworkSubtype: NetworkErrorTimeout,
			Host:           host,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &DeviceError{
			Type:           ErrTypeDNS,
			Message:        fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:            err,
			NetworkSubtype: NetworkErrorDNS,
			Host:           host,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return &DeviceError{
				Type:           ErrTypeConnectionRefused,
				Message:        "Device refused connection",
				Err:            err,
				NetworkSubtype: NetworkErrorConnectionRefused,
				Host:           host,
			}
		}
		if errors.Is(opErr.Err, syscall.EHOSTUNREACH) {
			return &DeviceError{
				Type:           ErrTypeNetwork,
				Message:        "Host unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorHostUnreachable,
				Host:           host,
			}
		}
		if errors.Is(opErr.Err, syscall.ENETUNREACH) {
			return &DeviceError{
				Type:           ErrTypeNetwork,
				Message:        "Network unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorNetworkUnreachable,
				Host:           host,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ClassifyNetworkError(urlErr.Err, host)
	}

	return &DeviceError{
		Type:           ErrTypeNetwork,
		Message:        "Network error occurred",
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
		Host:           host,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *DeviceError {
	classified := ClassifyNetworkError(err, "")
	if classified != nil {
		classified.Message = message
		return classified
	}
	return &DeviceError{
		Type:    ErrTypeNetwork,
		Message: message,
		Err:     err,
	}
}

// NewHTTPError creates an HTTP-level error carrying the parsed response body.
func NewHTTPError(statusCode int, message string, detail map[string]any) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
		Detail:     detail,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeParse,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeValidation,
		Message: message,
	}
}

// NewFieldError creates a validation error targeted at one field.
func NewFieldError(field, message string) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeValidation,
		Message: message,
		Field:   field,
	}
}

// NewResultError creates an error for a write the device answered with a
// failure result code.
func NewResultError(endpoint Endpoint, result int) *DeviceError {
	return &DeviceError{
		Type:     ErrTypeDevice,
		Message:  fmt.Sprintf("%s answered %d (%s)", endpoint, result, ResultText(result)),
		Endpoint: endpoint,
		Result:   result,
	}
}

func asDeviceError(err error) (*DeviceError, bool) {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr, true
	}
	return nil, false
}

// IsNetworkError checks if an error is a network error (including timeout, connection refused, DNS, etc.)
func IsNetworkError(err error) bool {
	if devErr, ok := asDeviceError(err); ok {
		return devErr.Type == ErrTypeNetwork ||
			devErr.Type == ErrTypeTimeout ||
			devErr.Type == ErrTypeConnectionRefused ||
			devErr.Type == ErrTypeDNS
	}
	return false
}

// IsHTTPError checks if an error is an HTTP error
func IsHTTPError(err error) bool {
	if devErr, ok := asDeviceError(err); ok {
		return devErr.Type == ErrTypeHTTP
	}
	return false
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	if devErr, ok := asDeviceError(err); ok {
		return devErr.Type == ErrTypeParse
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	if devErr, ok := asDeviceError(err); ok {
		return devErr.Type == ErrTypeValidation
	}
	return false
}

// IsDeviceError checks if an error carries a device failure result code
func IsDeviceError(err error) bool {
	if devErr, ok := asDeviceError(err); ok {
		return devErr.Type == ErrTypeDevice
	}
	return false
}

// IsTransportError reports whether err means the request did not produce a
// usable answer: network failures, HTTP rejections and unparseable bodies.
func IsTransportError(err error) bool {
	return IsNetworkError(err) || IsHTTPError(err) || IsParseError(err)
}

// FieldErrors collects the field-targeted validation errors joined into err.
func FieldErrors(err error) []*DeviceError {
	var out []*DeviceError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		if devErr, ok := asDeviceError(e); ok && devErr.Type == ErrTypeValidation && devErr.Field != "" {
			out = append(out, devErr)
		}
	}
	walk(err)
	return out
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	devErr, ok := asDeviceError(err)
	if !ok {
		return "An unexpected error occurred. Please try again."
	}

	switch devErr.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The camera did not respond in time.",
			"Troubleshooting:",
			"  • Press the camera's button to wake it; it sleeps between captures",
			"  • Verify you're connected to the camera's hotspot (NE101_xxxx)",
			"  • Try increasing the timeout with --timeout",
		}, "\n")

	case ErrTypeConnectionRefused:
		return strings.Join([]string{
			"The camera refused the connection.",
			"Troubleshooting:",
			"  • The configuration server only runs while the camera is awake",
			"  • Check that you're connected to the camera's hotspot",
			"  • The default address is http://192.168.1.1",
		}, "\n")

	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the camera hostname.",
			"Troubleshooting:",
			"  • Use the IP address instead of hostname",
			"  • Run 'ne101-cfg scan' to discover cameras on this network",
		}, "\n")

	case ErrTypeNetwork:
		hint := []string{"Network communication failed."}

		switch devErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			hint = append(hint, "The camera is not reachable on the network.",
				"Troubleshooting:",
				"  • Verify the camera address is correct",
				"  • Check that you're on the same network as the camera",
				"  • Try pinging the camera: ping "+devErr.Host)

		case NetworkErrorNetworkUnreachable:
			hint = append(hint, "Your computer cannot reach the camera's network.",
				"Troubleshooting:",
				"  • Connect to the camera's Wi-Fi hotspot",
				"  • Check your network adapter settings")

		default:
			hint = append(hint, "Troubleshooting:",
				"  • Check your network connection",
				"  • The camera handles one request at a time; close other browser tabs open on it",
				"  • Ensure you're connected to the correct network")
		}

		return strings.Join(hint, "\n")

	case ErrTypeHTTP:
		if devErr.StatusCode >= 500 {
			return strings.Join([]string{
				fmt.Sprintf("The camera returned an error (HTTP %d).", devErr.StatusCode),
				"Troubleshooting:",
				"  • Another client may be talking to the camera at the same time",
				"  • Try rebooting the camera",
			}, "\n")
		}
		return fmt.Sprintf("The camera returned HTTP error %d. Check the request parameters.", devErr.StatusCode)

	case ErrTypeParse:
		return strings.Join([]string{
			"Failed to parse the camera's response.",
			"This may indicate a firmware incompatibility.",
			"Troubleshooting:",
			"  • Check the firmware version with 'ne101-cfg device info'",
			"  • Try rebooting the camera",
		}, "\n")

	case ErrTypeDevice:
		return fmt.Sprintf("The camera rejected the change (result %d).", devErr.Result)

	case ErrTypeValidation:
		return "The configuration values are invalid. Check the error message for details."

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	devErr, ok := asDeviceError(err)
	if !ok {
		return err.Error()
	}

	switch devErr.Type {
	case ErrTypeTimeout:
		return "Camera not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Camera refused connection - is it awake?"
	case ErrTypeDNS:
		return "Cannot resolve camera hostname"
	case ErrTypeNetwork:
		switch devErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			return "Camera unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable - check Wi-Fi connection"
		default:
			return "Network error - check connection"
		}
	case ErrTypeHTTP:
		if msg := detailMessage(devErr.Detail); msg != "" {
			return fmt.Sprintf("Camera error (HTTP %d): %s", devErr.StatusCode, msg)
		}
		return fmt.Sprintf("Camera error (HTTP %d)", devErr.StatusCode)
	case ErrTypeParse:
		return "Failed to parse camera response"
	case ErrTypeDevice:
		return fmt.Sprintf("Camera rejected the change (%s)", ResultText(devErr.Result))
	case ErrTypeValidation:
		if devErr.Field != "" {
			return devErr.Field + ": " + devErr.Message
		}
		return devErr.Message
	default:
		return devErr.Message
	}
}

// detailMessage pulls a readable message out of a rejection body.
func detailMessage(detail map[string]any) string {
	if len(detail) == 0 {
		return ""
	}
	for _, key := range []string{"message", "msg", "error"} {
		if s, ok := detail[key].(string); ok && s != "" {
			return s
		}
	}
	keys := make([]string, 0, len(detail))
	for k := range detail {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, detail[k]))
	}
	return strings.Join(parts, " ")
}
