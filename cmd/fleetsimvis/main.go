// Command fleetsimvis replays a recorded run trace in a GUI window.
//
// Usage:
//
//	fleetsimvis <scenario.json> <trace.jsonl.zst>
package main

import (
	"fmt"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/elektrokombinacija/fleetsim/internal/scenario"
	"github.com/elektrokombinacija/fleetsim/internal/trace"
	"github.com/elektrokombinacija/fleetsim/internal/vis"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: fleetsimvis <scenario.json> <trace.jsonl.zst>")
		os.Exit(2)
	}

	sc, err := scenario.Load(os.Args[1])
	if err != nil {
		log.Fatalf("load scenario: %v", err)
	}
	entries, err := trace.Read(os.Args[2])
	if err != nil {
		log.Fatalf("read trace: %v", err)
	}

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("fleetsim - "+sc.Name),
			app.Size(unit.Dp(1200), unit.Dp(800)),
		)

		viewer := vis.NewApp(sc.World.Env, entries)
		if err := viewer.Run(window); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}
