// Command fragdec replays a captured stream of LoRaWAN Fragmented Data
// Block Transport fragments against the decoder and reports the final
// session status.
package main

import (
	"fmt"
	"os"

	"github.com/brocaar/lorawan-fragdec/cmd/fragdec/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
