package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"snaptile/internal/layout"
	"snaptile/internal/model"
)

func printLayoutUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  snaptile layout save --name NAME [--description TEXT]")
	fmt.Fprintln(w, "  snaptile layout restore (<id> | --name NAME) [--skip-minimized] [--activate]")
	fmt.Fprintln(w, "  snaptile layout list [--json]")
	fmt.Fprintln(w, "  snaptile layout show <id>")
	fmt.Fprintln(w, "  snaptile layout delete <id>")
	fmt.Fprintln(w, "  snaptile layout activate <id>")
	fmt.Fprintln(w, "  snaptile layout duplicate <id> <new-name>")
	fmt.Fprintln(w, "  snaptile layout validate <id>")
	fmt.Fprintln(w, "  snaptile layout export <id> <path>")
	fmt.Fprintln(w, "  snaptile layout import <path>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'snaptile layout <command> --help' for command-specific options.")
}

func runLayout(args []string) int {
	if len(args) == 0 {
		printLayoutUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printLayoutUsage(os.Stdout)
		return 0
	}

	ctx := context.Background()

	switch args[0] {
	case "save":
		return runLayoutSave(ctx, args[1:])
	case "restore":
		return runLayoutRestore(ctx, args[1:])
	case "list":
		return runLayoutList(ctx, args[1:])
	case "show":
		return runLayoutShow(ctx, args[1:])
	case "delete":
		return runLayoutDelete(ctx, args[1:])
	case "activate":
		return runLayoutActivate(ctx, args[1:])
	case "duplicate":
		return runLayoutDuplicate(ctx, args[1:])
	case "validate":
		return runLayoutValidate(ctx, args[1:])
	case "export":
		return runLayoutExport(ctx, args[1:])
	case "import":
		return runLayoutImport(ctx, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown layout command: %s\n\n", args[0])
		printLayoutUsage(os.Stderr)
		return 2
	}
}

func runLayoutSave(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	name := fs.String("name", "", "Name for the new layout (required)")
	description := fs.String("description", "", "Optional layout description")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snaptile layout save --name NAME [--description TEXT]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Snapshot the current window arrangement as a named layout.")
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
	if *name == "" {
		fmt.Fprintln(os.Stderr, "layout save requires --name")
		fs.Usage()
		return 2
	}

	layouts, st, conn, err := openDesktopLayouts(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()
	defer conn.Close()

	profile, err := layouts.SaveCurrentLayout(ctx, *name, *description)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("Saved layout %q (%s, %d windows)\n", profile.Name, profile.ID, len(profile.Windows))
	return 0
}

func runLayoutRestore(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	name := fs.String("name", "", "Restore the first layout matching this name")
	skipMinimized := fs.Bool("skip-minimized", false, "Do not restore windows saved as minimized")
	activate := fs.Bool("activate", false, "Mark the layout active after restoring")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snaptile layout restore (<id> | --name NAME) [--skip-minimized] [--activate]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Restore a saved layout. Windows are matched best-effort by title,")
		fmt.Fprintln(os.Stderr, "class and process; windows that no longer exist are skipped.")
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
	if fs.NArg() == 0 && *name == "" {
		fmt.Fprintln(os.Stderr, "layout restore requires <id> or --name")
		fs.Usage()
		return 2
	}

	layouts, st, conn, err := openDesktopLayouts(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()
	defer conn.Close()

	id := fs.Arg(0)
	if id == "" {
		matches, err := layouts.GetLayoutsByName(ctx, *name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if len(matches) == 0 {
			fmt.Fprintf(os.Stderr, "no layout matches name %q\n", *name)
			return 1
		}
		id = matches[0].ID
	}

	restored, err := layouts.RestoreLayout(ctx, id, &layout.RestoreOptions{
		SkipMinimized: *skipMinimized,
		MarkActive:    *activate,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !restored {
		fmt.Println("No windows could be restored (all targets gone?)")
		return 0
	}
	fmt.Printf("Restored layout %s\n", id)
	return 0
}

func runLayoutList(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output full layout details as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: snaptile layout list [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List saved layouts.")
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

	layouts, st, err := openLayouts(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	profiles, err := layouts.GetAllLayouts(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(profiles); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	for _, p := range profiles {
		marker := " "
		if p.IsActive {
			marker = "*"
		}
		fmt.Printf("%s %s  %-20s %d windows  updated %s\n",
			marker, p.ID, p.Name, len(p.Windows), p.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return 0
}

func runLayoutShow(ctx context.Context, args []string) int {
	if len(args) != 1 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: snaptile layout show <id>")
		return 2
	}

	layouts, st, err := openLayouts(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	profile, err := layouts.GetLayout(ctx, args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if profile == nil {
		fmt.Fprintf(os.Stderr, "layout %s not found\n", args[0])
		return 1
	}

	fmt.Printf("id:          %s\n", profile.ID)
	fmt.Printf("name:        %s\n", profile.Name)
	if profile.Description != "" {
		fmt.Printf("description: %s\n", profile.Description)
	}
	fmt.Printf("active:      %v\n", profile.IsActive)
	fmt.Printf("created:     %s\n", profile.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("updated:     %s\n", profile.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("monitors:    %d\n", len(profile.MonitorConfiguration))
	fmt.Printf("windows:     %d\n", len(profile.Windows))
	for _, w := range profile.Windows {
		fmt.Printf("  [%d] %-10s %4dx%-4d at %d,%d  %s (%s)\n",
			w.Monitor, w.State, w.Size.Width, w.Size.Height,
			w.Position.X, w.Position.Y, w.WindowTitle, w.ProcessName)
	}
	return 0
}

func runLayoutDelete(ctx context.Context, args []string) int {
	if len(args) != 1 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: snaptile layout delete <id>")
		return 2
	}

	layouts, st, err := openLayouts(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	if err := layouts.DeleteLayout(ctx, args[0]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("Deleted layout %s\n", args[0])
	return 0
}

func runLayoutActivate(ctx context.Context, args []string) int {
	if len(args) != 1 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: snaptile layout activate <id>")
		return 2
	}

	layouts, st, err := openLayouts(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	if err := layouts.ActivateLayout(ctx, args[0]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("Activated layout %s\n", args[0])
	return 0
}

func runLayoutDuplicate(ctx context.Context, args []string) int {
	if len(args) != 2 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: snaptile layout duplicate <id> <new-name>")
		return 2
	}

	layouts, st, err := openLayouts(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	copy, err := layouts.DuplicateLayout(ctx, args[0], args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("Duplicated layout as %q (%s)\n", copy.Name, copy.ID)
	return 0
}

func runLayoutValidate(ctx context.Context, args []string) int {
	if len(args) != 1 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: snaptile layout validate <id>")
		return 2
	}

	layouts, st, err := openLayouts(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	result, err := layouts.ValidateLayout(ctx, args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printValidation(result)
	if !result.IsValid {
		return 1
	}
	return 0
}

func printValidation(v *model.LayoutValidation) {
	fmt.Printf("layout:       %s\n", v.LayoutID)
	fmt.Printf("valid:        %v\n", v.IsValid)
	fmt.Printf("restorable:   %v\n", v.CanBeRestored)
	fmt.Printf("window_count: %d\n", v.WindowCount)
	for _, e := range v.Errors {
		fmt.Printf("error:   %s\n", e)
	}
	for _, w := range v.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}

func runLayoutExport(ctx context.Context, args []string) int {
	if len(args) != 2 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: snaptile layout export <id> <path>")
		return 2
	}

	layouts, st, err := openLayouts(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	if err := layouts.ExportLayout(ctx, args[0], args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("Exported layout %s to %s\n", args[0], args[1])
	return 0
}

func runLayoutImport(ctx context.Context, args []string) int {
	if len(args) != 1 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: snaptile layout import <path>")
		return 2
	}

	layouts, st, err := openLayouts(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	profile, err := layouts.ImportLayout(ctx, args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("Imported layout %q (%s, %d windows)\n", profile.Name, profile.ID, len(profile.Windows))
	return 0
}
