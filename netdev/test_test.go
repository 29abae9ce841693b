package netdev_test

import (
	"github.com/fabriclab/ipoib/core/testenv"
)

var makeAR = testenv.MakeAR
