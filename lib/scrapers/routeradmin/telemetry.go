package routeradmin

import (
	"github.com/Wayne-King/RouterControl/lib/restyutil"
	"github.com/Wayne-King/RouterControl/lib/telemetry"
)

var tracer = telemetry.Tracer("routercontrol.lib.scrapers.routeradmin")

var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput enables HTTP transcript dumps for clients
// created after this call.
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
