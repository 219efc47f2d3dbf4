package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/meetborg/joinbot/pkg/platform"
)

func runDetect(args []string) {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s detect <meeting-url>\n\nPrints the detected platform and meeting code for a URL.\n", os.Args[0])
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	url := fs.Arg(0)
	ptype, code := platform.ExtractMeetingCode(url)

	fmt.Printf("platform:     %s (%s)\n", ptype, ptype.DisplayName())
	if code != "" {
		fmt.Printf("meeting code: %s\n", code)
	}
	if joinURL := platform.NormalizeJoinURL(ptype, url); joinURL != url {
		fmt.Printf("join url:     %s\n", joinURL)
	}
	if _, ok := platform.ProfileFor(ptype); !ok {
		fmt.Println("note:         platform has no join profile")
	}
	if ptype == platform.Unknown {
		os.Exit(1)
	}
}
