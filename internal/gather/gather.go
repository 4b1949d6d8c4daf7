// Package gather reads the raw dataset files that make up a snapshot.
package gather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"shopmetrics/internal/store"
)

// Source produces the raw files of one snapshot.
type Source interface {
	// Name returns the source identifier.
	Name() string
	// Load reads every dataset. It returns ErrNoOrders when there is no
	// order file to build a date axis from.
	Load(ctx context.Context) (store.LoadedData, error)
}

// ErrNoOrders is returned when the orders directory holds no data files.
var ErrNoOrders = errors.New("gather: no order files")

// Dirs names the dataset directories under the data root.
type Dirs struct {
	Payments   string `yaml:"payments"`
	Cumulative string `yaml:"cumulative"`
	Orders     string `yaml:"orders"`
}

// DefaultDirs is the directory layout the export tool produces.
var DefaultDirs = Dirs{
	Payments:   "결제 데이터",
	Cumulative: "누적 결제 데이터",
	Orders:     "주문 데이터",
}

// DefaultExt is the data file extension.
const DefaultExt = ".csv"

// maxOpenFiles bounds concurrent file reads per dataset.
const maxOpenFiles = 8

// DirSource reads the datasets from <Root>/<dir>/<YYYYMMDD><Ext>.
type DirSource struct {
	Root string
	Dirs Dirs
	Ext  string
	log  *slog.Logger
}

var _ Source = (*DirSource)(nil)

// NewDirSource creates a DirSource. Empty directory names and extension
// fall back to the defaults.
func NewDirSource(root string, dirs Dirs, ext string, log *slog.Logger) *DirSource {
	if dirs.Payments == "" {
		dirs.Payments = DefaultDirs.Payments
	}
	if dirs.Cumulative == "" {
		dirs.Cumulative = DefaultDirs.Cumulative
	}
	if dirs.Orders == "" {
		dirs.Orders = DefaultDirs.Orders
	}
	if ext == "" {
		ext = DefaultExt
	}
	if log == nil {
		log = slog.Default()
	}
	return &DirSource{Root: root, Dirs: dirs, Ext: ext, log: log}
}

// Name implements Source.
func (s *DirSource) Name() string { return "dir:" + s.Root }

// Dir returns the directory of dataset ds.
func (s *DirSource) Dir(ds store.Dataset) string {
	switch ds {
	case store.DatasetPayments:
		return filepath.Join(s.Root, s.Dirs.Payments)
	case store.DatasetCumulative:
		return filepath.Join(s.Root, s.Dirs.Cumulative)
	default:
		return filepath.Join(s.Root, s.Dirs.Orders)
	}
}

// Load reads the three dataset directories concurrently. A missing
// directory is an empty dataset.
func (s *DirSource) Load(ctx context.Context) (store.LoadedData, error) {
	var data store.LoadedData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.Payments, err = s.readDir(gctx, s.Dir(store.DatasetPayments))
		return err
	})
	g.Go(func() (err error) {
		data.Cumulative, err = s.readDir(gctx, s.Dir(store.DatasetCumulative))
		return err
	})
	g.Go(func() (err error) {
		data.Orders, err = s.readDir(gctx, s.Dir(store.DatasetOrders))
		return err
	})
	if err := g.Wait(); err != nil {
		return store.LoadedData{}, err
	}

	s.log.Info("datasets loaded",
		"root", s.Root,
		"payments", len(data.Payments),
		"cumulative", len(data.Cumulative),
		"orders", len(data.Orders),
	)
	if len(data.Orders) == 0 {
		return data, ErrNoOrders
	}
	return data, nil
}

// ListDates returns the sorted date keys of the order files without
// reading them.
func (s *DirSource) ListDates() ([]string, error) {
	names, err := s.dataFiles(s.Dir(store.DatasetOrders))
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(names))
	for _, name := range names {
		dates = append(dates, strings.TrimSuffix(name, s.Ext))
	}
	return dates, nil
}

// dataFiles lists the regular files in dir carrying the data extension,
// sorted by name.
func (s *DirSource) dataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Warn("dataset directory not found", "dir", dir)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), s.Ext) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

func (s *DirSource) readDir(ctx context.Context, dir string) ([]store.CSVFile, error) {
	names, err := s.dataFiles(dir)
	if err != nil || len(names) == 0 {
		return nil, err
	}

	files := make([]store.CSVFile, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxOpenFiles)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return fmt.Errorf("reading %s: %w", name, err)
			}
			// Keys are always taken from a .csv name.
			files[i] = store.CSVFile{Filename: strings.TrimSuffix(name, s.Ext) + ".csv", Content: string(b)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
