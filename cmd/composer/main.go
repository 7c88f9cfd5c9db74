// Package main provides a CLI for building, randomizing and storing
// character compositions.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/paperdoll/internal/config"
	"github.com/cory-johannsen/paperdoll/internal/game/color"
	"github.com/cory-johannsen/paperdoll/internal/game/composition"
	"github.com/cory-johannsen/paperdoll/internal/game/part"
	"github.com/cory-johannsen/paperdoll/internal/injector"
	"github.com/cory-johannsen/paperdoll/internal/storage"
	"github.com/cory-johannsen/paperdoll/internal/storage/file"
)

// options holds the parsed command line.
type options struct {
	configPath string
	loadPath   string
	savePath   string
	storeName  string
	list       bool
	body       string
	skin       string
	tint       string
	randomize  bool
	seed       int64
	asJSON     bool
	equips     []equipArg
	colors     []colorArg
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("composer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	var equips, colors listFlag
	fs.StringVar(&o.configPath, "config", "", "path to configuration file (defaults and PAPERDOLL_ env when empty)")
	fs.StringVar(&o.loadPath, "load", "", "import a snapshot JSON file before applying changes")
	fs.StringVar(&o.savePath, "save", "", "export the resulting snapshot to a JSON file")
	fs.StringVar(&o.storeName, "store-name", "", "load (when present) and save the composition under this name in the configured store")
	fs.BoolVar(&o.list, "list", false, "list stored compositions and exit")
	fs.StringVar(&o.body, "body", "", "body type: male or female")
	fs.StringVar(&o.skin, "skin", "", "skin color as #rrggbb")
	fs.StringVar(&o.tint, "tint", "", "tint color as #rrggbb, or \"reset\"")
	fs.BoolVar(&o.randomize, "randomize", false, "randomize every slot from the palette")
	fs.Int64Var(&o.seed, "seed", 0, "random seed (0 draws from crypto/rand)")
	fs.BoolVar(&o.asJSON, "json", false, "print the snapshot as JSON instead of a slot table")
	fs.Var(&equips, "equip", "slot=name[@package]; empty name clears the slot (repeatable)")
	fs.Var(&colors, "color", "slot:layer=#rrggbb (repeatable)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	for _, s := range equips {
		e, err := parseEquip(s)
		if err != nil {
			return options{}, err
		}
		o.equips = append(o.equips, e)
	}
	for _, s := range colors {
		c, err := parseColor(s)
		if err != nil {
			return options{}, err
		}
		o.colors = append(o.colors, c)
	}
	return o, nil
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.LoadFromViper(config.NewViper())
	}
	return config.Load(path)
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	app, cleanup, err := injector.InitializeApp(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "starting: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := run(ctx, app, opts, os.Stdout); err != nil {
		app.Logger.Error("composer failed", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}

// run applies opts to app's engine in a fixed order: file import, store
// import, body, randomize, equips, colors, skin and tint. It then commits
// the skeleton swap, saves, and prints the result.
func run(ctx context.Context, app *injector.App, opts options, out io.Writer) error {
	start := time.Now()
	e := app.Engine
	var faults int
	note := func(r composition.Report) { faults += len(r.Faults) }

	if opts.list {
		return listStore(ctx, app.Store, out)
	}

	if opts.loadPath != "" {
		snap, err := file.LoadSnapshot(opts.loadPath)
		if err != nil {
			return err
		}
		note(e.Import(snap))
	}
	if opts.storeName != "" {
		snap, err := app.Store.Load(ctx, opts.storeName)
		switch {
		case err == nil:
			note(e.Import(snap))
		case errors.Is(err, storage.ErrNotFound):
			app.Logger.Info("new stored composition", zap.String("name", opts.storeName))
		default:
			return err
		}
	}
	if opts.body != "" {
		body, err := part.ParseBodyType(opts.body)
		if err != nil {
			return err
		}
		note(e.SetBodyType(body))
	}
	if opts.randomize {
		src := composition.NewCryptoSource()
		if opts.seed != 0 {
			src = rand.New(rand.NewSource(opts.seed))
		}
		app.Logger.Debug("randomizing", zap.Int64("seed", opts.seed))
		note(e.RandomizeAll(src, app.Palette))
	}
	for _, eq := range opts.equips {
		note(e.EquipByName(eq.Slot, eq.Name, eq.Package))
	}
	for _, c := range opts.colors {
		note(e.SetColor(c.Slot, c.Index, c.Color))
	}
	if opts.skin != "" {
		c, err := color.ParseHex(opts.skin)
		if err != nil {
			return fmt.Errorf("skin: %w", err)
		}
		e.SetSkinColor(c)
	}
	switch opts.tint {
	case "":
	case "reset":
		e.ResetTintColor()
	default:
		c, err := color.ParseHex(opts.tint)
		if err != nil {
			return fmt.Errorf("tint: %w", err)
		}
		e.SetTintColor(c)
	}
	e.CommitSkeletonSwap()

	snap := e.Export()
	if opts.savePath != "" {
		if err := file.SaveSnapshot(opts.savePath, snap); err != nil {
			return err
		}
	}
	if opts.storeName != "" {
		rec, err := app.Store.Save(ctx, opts.storeName, snap)
		if err != nil {
			return err
		}
		app.Logger.Info("composition stored", zap.String("name", rec.Name), zap.Stringer("id", rec.ID))
	}

	if err := printSnapshot(out, snap, app.Catalog, opts.asJSON); err != nil {
		return err
	}
	app.Logger.Info("composition complete",
		zap.Int("faults", faults),
		zap.Uint64("checksum", snap.Checksum()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func listStore(ctx context.Context, s storage.Store, out io.Writer) error {
	recs, err := s.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tID\tCHECKSUM\tUPDATED")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%016x\t%s\n", r.Name, r.ID, r.Checksum, r.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

// printSnapshot writes snap as JSON or as a slot table. Weapons in the
// table carry their category label.
func printSnapshot(out io.Writer, snap composition.Snapshot, catalog *part.Catalog, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	fmt.Fprintf(out, "body: %s  skin: %s  tint: %s\n", snap.BodyType, snap.SkinColor.Hex(), snap.TintColor.Hex())
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tPART\tCOLOR 1\tCOLOR 2\tCOLOR 3")
	for _, sd := range snap.SlotData {
		name := "-"
		if sd.PartName != "" {
			name = sd.PartPackage + "/" + sd.PartName
			if p, ok := catalog.FindPart(sd.PartName, sd.PartPackage, sd.Category); ok && p.Kind.IsWeapon() {
				name += " (" + p.WeaponCategory().Label() + ")"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", sd.Category.DisplayName(), name, sd.Color1.Hex(), sd.Color2.Hex(), sd.Color3.Hex())
	}
	return tw.Flush()
}
