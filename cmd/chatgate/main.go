// Command chatgate serves the visitor chat endpoint and offers operator
// utilities around it.
package main

//	@title			chatgate API
//	@version		0.1.0
//	@description	Visitor chat gateway for Humedal El Yali.
//	@BasePath		/api/v1

import (
	"os"

	_ "github.com/HerbHall/chatgate/api/swagger"
)

func main() {
	if err := newRootCmd(&cli{}).Execute(); err != nil {
		os.Exit(1)
	}
}
