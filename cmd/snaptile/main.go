package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snaptile/internal/config"
	"snaptile/internal/hotkey"
	"snaptile/internal/layout"
	"snaptile/internal/model"
	"snaptile/internal/store"
	"snaptile/internal/window"
	"snaptile/internal/x11"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: snaptile daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: snaptile daemon")
			os.Exit(2)
		}
		runDaemon()
	case "layout":
		os.Exit(runLayout(os.Args[2:]))
	case "hotkey":
		os.Exit(runHotkey(os.Args[2:]))
	case "window":
		os.Exit(runWindow(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: snaptile <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the snaptile daemon (foreground, registers hotkeys)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  layout save         Snapshot the current window arrangement")
	fmt.Fprintln(w, "  layout restore      Restore a saved layout")
	fmt.Fprintln(w, "  layout list         List saved layouts")
	fmt.Fprintln(w, "  layout show         Show a layout in detail")
	fmt.Fprintln(w, "  layout delete       Delete a layout")
	fmt.Fprintln(w, "  layout activate     Mark a layout as the active one")
	fmt.Fprintln(w, "  layout duplicate    Copy a layout under a new name")
	fmt.Fprintln(w, "  layout validate     Check whether a layout can be restored")
	fmt.Fprintln(w, "  layout export       Write a layout to a JSON file")
	fmt.Fprintln(w, "  layout import       Read a layout from a JSON file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  hotkey list         List persisted hotkeys")
	fmt.Fprintln(w, "  hotkey add          Persist a new hotkey binding")
	fmt.Fprintln(w, "  hotkey remove       Remove a persisted hotkey")
	fmt.Fprintln(w, "  hotkey conflicts    List hotkeys sharing the same key combination")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  window list         List windows on the desktop")
	fmt.Fprintln(w, "  window stats        Show window statistics")
	fmt.Fprintln(w, "  window monitors     Show the monitor configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'snaptile <command> --help' for command-specific options.")
}

// openStore opens the layout/hotkey database at the configured path.
func openStore(ctx context.Context) (*config.Config, *store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, st, nil
}

// openLayouts wires a layout service without a desktop connection.
// Commands that only touch the database (list, delete, export, ...)
// work without an X server.
func openLayouts(ctx context.Context) (*layout.Service, *store.Store, error) {
	_, st, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	repo, err := store.NewLayoutRepository(ctx, st)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return layout.NewService(nil, repo), st, nil
}

// openDesktopLayouts wires a layout service over a live X11 connection,
// for commands that capture or manipulate windows.
func openDesktopLayouts(ctx context.Context) (*layout.Service, *store.Store, *x11.Connection, error) {
	_, st, err := openStore(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	repo, err := store.NewLayoutRepository(ctx, st)
	if err != nil {
		st.Close()
		return nil, nil, nil, err
	}
	conn, err := x11.NewConnection()
	if err != nil {
		st.Close()
		return nil, nil, nil, err
	}
	windows := window.NewService(x11.NewWindowBackend(conn))
	return layout.NewService(windows, repo), st, conn, nil
}

func runDaemon() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (database: %s, %d bootstrap hotkeys)", cfg.DatabasePath, len(cfg.Hotkeys))

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	layoutRepo, err := store.NewLayoutRepository(ctx, st)
	if err != nil {
		log.Fatalf("Failed to open layout repository: %v", err)
	}
	hotkeyRepo, err := store.NewHotkeyRepository(ctx, st)
	if err != nil {
		log.Fatalf("Failed to open hotkey repository: %v", err)
	}

	conn, err := x11.NewConnection()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer conn.Close()

	windows := window.NewService(x11.NewWindowBackend(conn))
	layouts := layout.NewService(windows, layoutRepo)

	// The hotkey backend reports presses by platform ID; the service is
	// created right after, so the closure sees it initialized.
	var hotkeys *hotkey.Service
	hotkeyBackend := x11.NewHotkeyBackend(conn, func(platformID int) {
		hotkeys.HandleHotkeyPress(ctx, platformID)
	})
	hotkeys = hotkey.NewService(hotkeyBackend, hotkeyRepo)
	hotkeys.RegisterCallbackFactory(hotkeyCallbackFactory(ctx, layouts))

	registerStartupHotkeys(ctx, cfg, layouts, hotkeys)

	log.Printf("snaptile daemon started (%d hotkeys registered)", hotkeys.RegisteredCount())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				log.Println("Received SIGHUP, re-registering hotkeys...")
				newCfg, err := config.Load()
				if err != nil {
					log.Printf("Config reload failed: %v", err)
					continue
				}
				cfg = newCfg
				registerStartupHotkeys(ctx, cfg, layouts, hotkeys)
				log.Printf("Hotkeys re-registered (%d active)", hotkeys.RegisteredCount())

			case os.Interrupt, syscall.SIGTERM:
				log.Println("Shutting down snaptile daemon...")
				if err := hotkeys.SuspendHotkeys(ctx); err != nil {
					log.Printf("Failed to release hotkeys: %v", err)
				}
				conn.Quit()
				return
			}
		}
	}()

	log.Println("Entering event loop...")
	conn.EventLoop()
}

// registerStartupHotkeys re-registers the persisted hotkeys, then adds
// the bootstrap bindings from the config that are not persisted yet.
func registerStartupHotkeys(ctx context.Context, cfg *config.Config, layouts *layout.Service, hotkeys *hotkey.Service) {
	orphans, err := hotkeys.RefreshHotkeys(ctx)
	if err != nil {
		log.Printf("Warning: failed to refresh persisted hotkeys: %v", err)
	}
	for _, id := range orphans {
		log.Printf("Warning: hotkey %s has no rebuildable callback and stays inert", id)
	}

	for _, binding := range cfg.Hotkeys {
		hk := &model.HotkeyInfo{
			Keys:   binding.Keys,
			Action: model.HotkeyAction(binding.Action),
		}
		if binding.Layout != "" {
			matches, err := layouts.GetLayoutsByName(ctx, binding.Layout)
			if err != nil || len(matches) == 0 {
				log.Printf("Warning: hotkey %s references unknown layout %q, skipped", binding.Keys, binding.Layout)
				continue
			}
			hk.LayoutID = matches[0].ID
		}

		cb := hotkeyCallbackFactory(ctx, layouts)(hk.Action, hk.LayoutID)
		registered, err := hotkeys.RegisterHotkey(ctx, hk, cb)
		if err != nil {
			log.Printf("Warning: failed to register hotkey %s: %v", binding.Keys, err)
			continue
		}
		if registered {
			log.Printf("Hotkey registered: %s -> %s", hk.Keys, hk.Action)
		}
	}
}

// hotkeyCallbackFactory maps persisted hotkey actions to layout
// operations. save_layout snapshots under a timestamped name;
// restore_layout restores its bound layout, or the active one when
// unbound.
func hotkeyCallbackFactory(ctx context.Context, layouts *layout.Service) hotkey.CallbackFactory {
	return func(action model.HotkeyAction, layoutID string) hotkey.Callback {
		switch action {
		case model.ActionSaveLayout:
			return func() {
				name := "snapshot " + time.Now().Format("2006-01-02 15:04:05")
				profile, err := layouts.SaveCurrentLayout(ctx, name, "saved via hotkey")
				if err != nil {
					log.Printf("Hotkey save failed: %v", err)
					return
				}
				log.Printf("Saved layout %q (%d windows)", profile.Name, len(profile.Windows))
			}
		case model.ActionRestoreLayout:
			return func() {
				id := layoutID
				if id == "" {
					active, err := layouts.GetActiveLayout(ctx)
					if err != nil || active == nil {
						log.Printf("Hotkey restore: no active layout to restore")
						return
					}
					id = active.ID
				}
				restored, err := layouts.RestoreLayout(ctx, id, nil)
				if err != nil {
					log.Printf("Hotkey restore failed: %v", err)
					return
				}
				log.Printf("Restored layout %s (any windows placed: %v)", id, restored)
			}
		default:
			return nil
		}
	}
}
