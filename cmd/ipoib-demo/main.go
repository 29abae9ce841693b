// Command ipoib-demo exercises the IPoIB driver on an in-memory fabric.
package main

import (
	"log"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/fabriclab/ipoib/ib/ibtest"
	"github.com/fabriclab/ipoib/ipoib"
)

var (
	fabric *ibtest.Fabric
	devA   *ipoib.Device
	devB   *ipoib.Device
)

// openFabric builds a two-node fabric and brings both devices up.
func openFabric() (e error) {
	fabric = ibtest.NewFabric()
	if devA, e = ipoib.Probe(fabric.AddDevice("mthca0"), ipoib.Config{}); e != nil {
		return e
	}
	if devB, e = ipoib.Probe(fabric.AddDevice("mthca1"), ipoib.Config{}); e != nil {
		return e
	}
	if e = devA.NetDevice().Open(); e != nil {
		return e
	}
	return devB.NetDevice().Open()
}

var app = &cli.App{
	Usage: "IPoIB driver demo on an in-memory Infiniband fabric.",
	Before: func(c *cli.Context) error {
		return openFabric()
	},
	After: func(c *cli.Context) error {
		return fabric.Close()
	},
}

func defineCommand(command *cli.Command) {
	app.Commands = append(app.Commands, command)
}

func main() {
	sort.Sort(cli.CommandsByName(app.Commands))
	e := app.Run(os.Args)
	if e != nil {
		log.Fatal(e)
	}
}
