package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	hostbridge "github.com/nexabase/hostbridge"
	"github.com/nexabase/hostbridge/identity"
	"github.com/nexabase/hostbridge/wazeroengine"
)

func main() {
	var (
		engineFile  = flag.String("engine", "", "Path to engine wasm module")
		fetchSize   = flag.Int("fetch", 0, "Fetch-size hint (0 = engine default)")
		maxRows     = flag.Int("rows", 0, "Stop after N rows (0 = all)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *engineFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: bridgerun -engine <module.wasm> [-fetch n] [-rows n]")
		fmt.Fprintln(os.Stderr, "       bridgerun -engine <module.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*engineFile, *fetchSize); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*engineFile, *fetchSize, *maxRows); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(engineFile string, fetchSize, maxRows int) error {
	ctx := context.Background()

	wasm, err := os.ReadFile(engineFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	var opts []wazeroengine.Option
	if fetchSize > 0 {
		opts = append(opts, wazeroengine.WithDefaultFetchSize(fetchSize))
	}
	eng, err := wazeroengine.New(ctx, wasm, opts...)
	if err != nil {
		return err
	}

	b := hostbridge.New(eng)
	defer b.Close(ctx)

	user, err := b.CurrentUser(ctx)
	if err != nil {
		return err
	}
	session, err := b.SessionUser(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Engine: %s\n", engineFile)
	fmt.Printf("Current user: %s (%s)\n", user, nameOrUnknown(ctx, b, user))
	fmt.Printf("Session user: %s (%s)\n", session, nameOrUnknown(ctx, b, session))

	rows, err := b.OpenRows(ctx)
	if err != nil {
		return err
	}
	defer rows.Close(ctx)

	fmt.Printf("\nRows (fetch size %d):\n", rows.FetchSize())
	for maxRows == 0 || rows.Row() < maxRows {
		ok, err := rows.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		data, err := io.ReadAll(rows.Current())
		if err != nil {
			return err
		}
		fmt.Printf("%4d  %q\n", rows.Row(), data)
	}
	return nil
}

func nameOrUnknown(ctx context.Context, b *hostbridge.Bridge, id identity.ID) string {
	name, err := b.NameOf(ctx, id)
	if err != nil {
		return "unknown"
	}
	return name
}
