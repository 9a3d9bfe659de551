package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ivlev/prdeck/internal/loader"
	"github.com/ivlev/prdeck/internal/snapshot"
	"github.com/ivlev/prdeck/internal/system"
	"github.com/ivlev/prdeck/internal/writer"
)

func main() {
	system.InitResourceLimits()

	dirPtr := flag.String("dir", "presentations/default", "Presentation directory to compile")
	allPtr := flag.String("all", "", "Compile every presentation directory under this root")
	workersPtr := flag.Int("workers", 0, "Worker count for -all (0 = auto)")
	snapshotPtr := flag.String("snapshot", "", "Write the resolved scene graph to this YAML file")
	resavePtr := flag.Bool("resave", false, "Re-serialize the presentation back to its directory (canonicalize)")
	watchPtr := flag.Bool("watch", false, "Keep running and recompile whenever an owned file changes")

	flag.Parse()

	if *allPtr != "" {
		workers := *workersPtr
		if workers <= 0 {
			workers = system.OptimalWorkers()
		}
		fmt.Printf("[*] Compiling presentations under %s with %d workers\n", *allPtr, workers)
		all, err := loader.LoadAll(*allPtr, workers)
		if err != nil {
			log.Fatalf("[-] Batch compile failed: %v", err)
		}
		for name, pres := range all {
			fmt.Printf("[*] %s: %d views, %d nodes, %d cues\n", name, len(pres.Views), len(pres.Nodes), len(pres.AnimationCues))
		}
		fmt.Printf("[*] %d presentations OK\n", len(all))
		return
	}

	compile := func() error {
		pres, err := loader.Load(*dirPtr)
		if err != nil {
			return err
		}
		fmt.Printf("[*] %s: %d views, %d nodes, %d cues, initial view %s\n",
			pres.ID, len(pres.Views), len(pres.Nodes), len(pres.AnimationCues), pres.InitialViewID)

		if *snapshotPtr != "" {
			if err := snapshot.Write(pres, *snapshotPtr); err != nil {
				return fmt.Errorf("snapshot: %w", err)
			}
			fmt.Printf("[*] Scene graph written to %s\n", *snapshotPtr)
		}
		if *resavePtr {
			if err := writer.Save(pres, *dirPtr); err != nil {
				return fmt.Errorf("resave: %w", err)
			}
			fmt.Printf("[*] Presentation re-serialized to %s\n", *dirPtr)
		}
		return nil
	}

	if err := compile(); err != nil {
		log.Fatalf("[-] Compile failed: %v", err)
	}
	if !*watchPtr {
		return
	}

	w, err := loader.Watch(*dirPtr)
	if err != nil {
		log.Fatalf("[-] Watch failed: %v", err)
	}
	defer w.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	fmt.Printf("[*] Watching %s (Ctrl-C to stop)\n", *dirPtr)

	for {
		select {
		case <-sig:
			fmt.Println("[*] Stopping")
			return
		case _, ok := <-w.Events:
			if !ok {
				return
			}
			if err := compile(); err != nil {
				// Keep watching: the author is mid-edit.
				fmt.Printf("[!] %v\n", err)
			}
		}
	}
}
