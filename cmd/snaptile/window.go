package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"snaptile/internal/window"
	"snaptile/internal/x11"
)

func printWindowUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  snaptile window list [--json] [--process NAME] [--monitor N]")
	fmt.Fprintln(w, "  snaptile window stats")
	fmt.Fprintln(w, "  snaptile window monitors")
}

func runWindow(args []string) int {
	if len(args) == 0 {
		printWindowUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printWindowUsage(os.Stdout)
		return 0
	}

	ctx := context.Background()

	switch args[0] {
	case "list":
		return runWindowList(ctx, args[1:])
	case "stats":
		return runWindowStats(ctx, args[1:])
	case "monitors":
		return runWindowMonitors(ctx, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown window command: %s\n\n", args[0])
		printWindowUsage(os.Stderr)
		return 2
	}
}

func openWindows() (*window.Service, *x11.Connection, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, nil, err
	}
	return window.NewService(x11.NewWindowBackend(conn)), conn, nil
}

func runWindowList(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output window details as JSON")
	process := fs.String("process", "", "Only windows of this process")
	monitor := fs.Int("monitor", -1, "Only windows on this monitor index")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snaptile window list [--json] [--process NAME] [--monitor N]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	windows, conn, err := openWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer conn.Close()

	infos, err := windows.CaptureDesktopLayout(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *process != "" {
		infos, err = windows.GetWindowsByProcess(ctx, *process)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	if *monitor >= 0 {
		filtered := infos[:0]
		for _, w := range infos {
			if w.Monitor == *monitor {
				filtered = append(filtered, w)
			}
		}
		infos = filtered
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(infos); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	for _, w := range infos {
		fmt.Printf("%-10s [%d] %-10s %4dx%-4d at %d,%d  %s (%s)\n",
			w.WindowID, w.Monitor, w.State, w.Size.Width, w.Size.Height,
			w.Position.X, w.Position.Y, w.WindowTitle, w.ProcessName)
	}
	return 0
}

func runWindowStats(ctx context.Context, args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: snaptile window stats")
		return 2
	}

	windows, conn, err := openWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer conn.Close()

	stats, err := windows.GetWindowStatistics(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	fmt.Printf("total:     %d\n", stats.TotalWindows)
	fmt.Printf("visible:   %d\n", stats.VisibleWindows)
	fmt.Printf("minimized: %d\n", stats.MinimizedWindows)
	fmt.Printf("maximized: %d\n", stats.MaximizedWindows)
	for proc, n := range stats.ByProcess {
		fmt.Printf("process %-20s %d\n", proc, n)
	}
	for idx, n := range stats.ByMonitor {
		fmt.Printf("monitor %-20d %d\n", idx, n)
	}
	return 0
}

func runWindowMonitors(ctx context.Context, args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: snaptile window monitors")
		return 2
	}

	windows, conn, err := openWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer conn.Close()

	monitors, err := windows.GetMonitorConfiguration(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	for _, m := range monitors {
		primary := ""
		if m.IsPrimary {
			primary = " (primary)"
		}
		fmt.Printf("[%d] %-12s %dx%d at %d,%d  work %dx%d  %ddpi %dHz%s\n",
			m.Index, m.Name,
			m.Bounds.Width, m.Bounds.Height, m.Bounds.X, m.Bounds.Y,
			m.WorkingArea.Width, m.WorkingArea.Height,
			m.Dpi, m.RefreshRate, primary)
	}
	return 0
}
