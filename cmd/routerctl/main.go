package main

import (
	"github.com/Wayne-King/RouterControl/cmd/routerctl/commands"
	"github.com/Wayne-King/RouterControl/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
