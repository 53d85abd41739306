// Package deviceconfig is the HTTP gateway to an NE101 camera's local
// configuration API, plus the wire models for every parameter group.
//
// The camera's embedded HTTP server cannot serve two requests at once; a
// second concurrent request can crash it or corrupt its state. Client
// therefore funnels every call through a single-slot semaphore, and the
// sections built on top of it await each call before issuing the next.
//
// # Parameter Groups
//
//   - Capture, Trigger, Upload: capture schedule, PIR/alarm trigger, upload schedule
//   - Light, Camera: fill light and image sensor settings
//   - Platform: MQTT data report broker, with TLS credential names
//   - Wifi, Cellular: station network or cat-1 modem
//   - DeviceInfo, Battery, NTPSync, DeviceTime: identity and housekeeping
//
// # Usage Example
//
//	client := deviceconfig.NewClient(deviceconfig.DefaultHost, deviceconfig.DefaultPort)
//
//	var capture deviceconfig.CaptureParams
//	if err := client.Read(ctx, deviceconfig.GetCapParam, &capture); err != nil {
//	    log.Fatal(deviceconfig.GetShortErrorMessage(err))
//	}
//
//	capture.IntervalValue = 30
//	ack, err := client.Write(ctx, deviceconfig.SetCapParam, capture)
//
// # Error Handling
//
// Every failure is a *DeviceError. Transport failures are classified the
// same way net errors are (timeout, refused, DNS, unreachable). A non-2xx
// status becomes an HTTP error whose Detail holds the parsed JSON body.
// Client-side checks return validation errors naming the offending Field;
// several are combined with errors.Join and can be listed with FieldErrors.
//
// The gateway never retries. Callers decide what a failure means for their
// section.
package deviceconfig
