// Package emulatortest serves an emulated camera for tests.
package emulatortest

import (
	"net/http/httptest"
	"testing"

	"github.com/muurk/ne101/internal/deviceconfig"
	"github.com/muurk/ne101/internal/emulator"
)

// Start serves a new emulator over httptest and returns it with a client
// pointed at it. The server is closed when the test ends.
func Start(tb testing.TB, opts ...emulator.Option) (*emulator.Emulator, *deviceconfig.Client) {
	tb.Helper()
	emu := emulator.New(opts...)
	srv := httptest.NewServer(emu.Handler())
	tb.Cleanup(srv.Close)
	return emu, deviceconfig.NewClientWithURL(srv.URL)
}
