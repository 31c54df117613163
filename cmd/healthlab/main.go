// Command healthlab runs the risk scorer, the dataset summarizer and the text classifier from
// the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/synaptica-ai/healthlab/pkg/common/config"
	"github.com/synaptica-ai/healthlab/pkg/common/logger"
)

func main() {
	logger.Silence()
	cfg := config.Load()

	a, err := newApp(cfg, nil, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("%v", err))
		os.Exit(1)
	}

	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("%s", softMessage(err)))
		os.Exit(1)
	}
}
