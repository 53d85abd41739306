// Package discovery locates NE101 cameras from the client machine.
//
// Two paths are supported. A camera that has joined a station network is
// found with multicast DNS: it answers "_http._tcp" browses with a host
// name built from its model and the last three MAC bytes (for example
// "NE101_1A2B3C.local"). A camera in hotspot mode is always reachable at
// the fixed gateway address, which Probe checks directly with a device
// info read.
//
// # Usage Example
//
//	devices, err := discovery.ScanForDevices(5 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, device := range devices {
//	    fmt.Println(device)
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Cameras must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// A camera that is asleep between captures does not answer either path.
package discovery
