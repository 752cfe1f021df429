package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"snaptile/internal/hotkey"
	"snaptile/internal/model"
	"snaptile/internal/store"
)

func printHotkeyUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  snaptile hotkey list")
	fmt.Fprintln(w, "  snaptile hotkey add --keys KEYS --action ACTION [--layout NAME]")
	fmt.Fprintln(w, "  snaptile hotkey remove (<id> | --keys KEYS)")
	fmt.Fprintln(w, "  snaptile hotkey conflicts [--keep ID]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Changes take effect in a running daemon after SIGHUP or restart.")
}

func runHotkey(args []string) int {
	if len(args) == 0 {
		printHotkeyUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printHotkeyUsage(os.Stdout)
		return 0
	}

	ctx := context.Background()

	switch args[0] {
	case "list":
		return runHotkeyList(ctx, args[1:])
	case "add":
		return runHotkeyAdd(ctx, args[1:])
	case "remove":
		return runHotkeyRemove(ctx, args[1:])
	case "conflicts":
		return runHotkeyConflicts(ctx, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown hotkey command: %s\n\n", args[0])
		printHotkeyUsage(os.Stderr)
		return 2
	}
}

func openHotkeyRepo(ctx context.Context) (*store.HotkeyRepository, *store.Store, error) {
	_, st, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	repo, err := store.NewHotkeyRepository(ctx, st)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return repo, st, nil
}

func runHotkeyList(ctx context.Context, args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: snaptile hotkey list")
		return 2
	}

	repo, st, err := openHotkeyRepo(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	hotkeys, err := repo.GetAll(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	for _, hk := range hotkeys {
		state := "enabled"
		if !hk.IsEnabled {
			state = "disabled"
		}
		line := fmt.Sprintf("%s  %-24s %-14s %s", hk.ID, hk.Keys, hk.Action, state)
		if hk.LayoutID != "" {
			line += "  layout=" + hk.LayoutID
		}
		if hk.UseCount > 0 {
			line += fmt.Sprintf("  used %d times", hk.UseCount)
		}
		fmt.Println(line)
	}
	return 0
}

func runHotkeyAdd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	keys := fs.String("keys", "", "Key combination, e.g. Ctrl+Shift+S (required)")
	action := fs.String("action", "", "Action: save_layout or restore_layout (required)")
	layoutName := fs.String("layout", "", "Layout name the action targets")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snaptile hotkey add --keys KEYS --action ACTION [--layout NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Persist a new hotkey binding. The running daemon picks it up after")
		fmt.Fprintln(os.Stderr, "SIGHUP or restart.")
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
	if *keys == "" || *action == "" {
		fmt.Fprintln(os.Stderr, "hotkey add requires --keys and --action")
		fs.Usage()
		return 2
	}

	binding, err := hotkey.ParseKeys(*keys)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	repo, st, err := openHotkeyRepo(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	existing, err := repo.FindByKeys(ctx, binding.Canonical())
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if existing != nil {
		fmt.Fprintf(os.Stderr, "combination %s is already bound (hotkey %s)\n", binding.Canonical(), existing.ID)
		return 1
	}

	hk := &model.HotkeyInfo{
		ID:        model.NewID(),
		Keys:      binding.Canonical(),
		Modifiers: binding.ModifierNames(),
		Key:       binding.KeyName(),
		IsEnabled: true,
		Action:    model.HotkeyAction(*action),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if *layoutName != "" {
		layouts, err := store.NewLayoutRepository(ctx, st)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		matches, err := layouts.FindByName(ctx, *layoutName)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if len(matches) == 0 {
			fmt.Fprintf(os.Stderr, "no layout matches name %q\n", *layoutName)
			return 1
		}
		hk.LayoutID = matches[0].ID
	}

	if err := repo.Insert(ctx, hk); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("Added hotkey %s: %s -> %s\n", hk.ID, hk.Keys, hk.Action)
	return 0
}

func runHotkeyRemove(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	keys := fs.String("keys", "", "Remove the hotkey bound to this combination")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snaptile hotkey remove (<id> | --keys KEYS)")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 && *keys == "" {
		fmt.Fprintln(os.Stderr, "hotkey remove requires <id> or --keys")
		fs.Usage()
		return 2
	}

	repo, st, err := openHotkeyRepo(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	id := fs.Arg(0)
	if id == "" {
		hk, err := repo.FindByKeys(ctx, *keys)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "no hotkey is bound to %s\n", *keys)
			} else {
				fmt.Fprintln(os.Stderr, err)
			}
			return 1
		}
		id = hk.ID
	}

	if err := repo.Delete(ctx, id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("Removed hotkey %s\n", id)
	return 0
}

func conflictContains(c model.HotkeyConflict, id string) bool {
	for _, hk := range c.Hotkeys {
		if hk.ID == id {
			return true
		}
	}
	return false
}

func runHotkeyConflicts(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("conflicts", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	keep := fs.String("keep", "", "Resolve conflicts by keeping this hotkey id and deleting the rest of its group")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snaptile hotkey conflicts [--keep ID]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List groups of persisted hotkeys sharing one key combination.")
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

	repo, st, err := openHotkeyRepo(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	// No platform backend here: conflict inspection and resolution work
	// purely on persisted state.
	svc := hotkey.NewService(nil, repo)

	conflicts, err := svc.GetHotkeyConflicts(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(conflicts) == 0 {
		fmt.Println("No conflicts")
		return 0
	}

	for _, c := range conflicts {
		fmt.Printf("%s:\n", c.Keys)
		for _, hk := range c.Hotkeys {
			fmt.Printf("  %s  %-14s enabled=%v\n", hk.ID, hk.Action, hk.IsEnabled)
		}

		if *keep != "" && conflictContains(c, *keep) {
			resolved, err := svc.ResolveHotkeyConflict(ctx, c, *keep)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			if resolved {
				fmt.Printf("  resolved in favor of %s\n", *keep)
			}
		}
	}
	return 0
}
