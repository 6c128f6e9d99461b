package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"userapi/internal/config"
	"userapi/internal/database"
	"userapi/internal/repository"
	"userapi/internal/seed"
	"userapi/internal/storage"
)

var (
	errSource        = errors.New("exactly one of --file or --object is required")
	errUploadAborted = errors.New("upload stopped reading")
)

// Runner holds the dependencies shared by the seed commands.
type Runner struct {
	users     repository.UserRepository
	openDB    func(context.Context) (*sql.DB, error)
	openStore func(context.Context) (storage.Storage, error)
	logger    *log.Logger
	output    io.Writer
}

// RunnerOpts configures NewRunner. OpenDB and OpenStore default to the
// connections described by Config.
type RunnerOpts struct {
	Config    *config.AppConfig
	Users     repository.UserRepository
	OpenDB    func(context.Context) (*sql.DB, error)
	OpenStore func(context.Context) (storage.Storage, error)
	Logger    *log.Logger
	Output    io.Writer
}

func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = config.Load()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	cfg, logger := opts.Config, opts.Logger
	if opts.OpenDB == nil {
		opts.OpenDB = func(ctx context.Context) (*sql.DB, error) {
			if err := cfg.Database.Validate(); err != nil {
				return nil, err
			}
			return database.NewPostgres(ctx, cfg.Database, slog.New(logger))
		}
	}
	if opts.OpenStore == nil {
		opts.OpenStore = func(ctx context.Context) (storage.Storage, error) {
			return storage.NewMinIO(ctx, cfg.MinIO)
		}
	}

	return &Runner{
		users:     opts.Users,
		openDB:    opts.OpenDB,
		openStore: opts.OpenStore,
		logger:    opts.Logger,
		output:    opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	return []*cli.Command{importCommand(r), exportCommand(r)}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Path to a local CSV file",
		},
		&cli.StringFlag{
			Name:    "object",
			Aliases: []string{"o"},
			Usage:   "Object key in the configured MinIO bucket",
		},
	}
}

func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "import",
		Usage:  "Create users from a CSV with header name,email,phone,note",
		Flags:  sourceFlags(),
		Action: r.Import,
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write every user to a CSV with header id,name,email,phone,note",
		Flags: append(sourceFlags(),
			&cli.IntFlag{
				Name:  "page-size",
				Usage: "Number of users read per query",
				Value: seed.DefaultPageSize,
			},
			&cli.DurationFlag{
				Name:  "presign",
				Usage: "Print a download URL valid for this long (object exports only)",
			},
		),
		Action: r.Export,
	}
}

// Import reads the selected CSV source and creates its valid rows.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	file, object, err := source(cmd)
	if err != nil {
		return err
	}

	var in io.ReadCloser
	if file != "" {
		if in, err = os.Open(file); err != nil {
			return fmt.Errorf("open %s: %w", file, err)
		}
	} else {
		store, err := r.openStore(ctx)
		if err != nil {
			return err
		}
		if in, _, err = store.Get(ctx, object); err != nil {
			return err
		}
	}
	defer in.Close()

	var rep seed.Report
	err = r.withSession(ctx, func(ctx context.Context, s database.Session) error {
		var err error
		rep, err = seed.Import(ctx, s, r.users, in)
		return err
	})

	for _, re := range rep.Errors {
		r.logger.Warn("row skipped", "line", re.Line, "err", re.Err)
	}
	r.writePlainln("created %d users, skipped %d rows", rep.Created, rep.Skipped)
	return err
}

// Export dumps the user table to the selected CSV destination.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	file, object, err := source(cmd)
	if err != nil {
		return err
	}
	pageSize := cmd.Int("page-size")

	if file != "" {
		return r.exportFile(ctx, file, pageSize)
	}
	return r.exportObject(ctx, object, pageSize, cmd.Duration("presign"))
}

func (r *Runner) exportFile(ctx context.Context, path string, pageSize int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	n, err := r.export(ctx, f, pageSize)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("write %s: %w", path, cerr)
	}
	if err != nil {
		return err
	}
	r.writePlainln("exported %d users to %s", n, path)
	return nil
}

// exportObject streams the CSV straight into the upload while pages are still being read.
func (r *Runner) exportObject(ctx context.Context, key string, pageSize int, presign time.Duration) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	pr, pw := io.Pipe()
	var n int
	done := make(chan error, 1)
	go func() {
		var err error
		n, err = r.export(ctx, pw, pageSize)
		pw.CloseWithError(err)
		done <- err
	}()

	info, putErr := store.Put(ctx, key, pr, storage.PutOptions{
		Size:        -1,
		ContentType: storage.CSVContentType,
	})
	// Unblocks the writer if the upload stopped reading early.
	pr.CloseWithError(errUploadAborted)
	if err := <-done; err != nil && !errors.Is(err, errUploadAborted) {
		return err
	}
	if putErr != nil {
		return putErr
	}

	r.logger.Info("snapshot uploaded", "key", info.Key, "size", info.Size, "etag", info.ETag)
	r.writePlainln("exported %d users to %s", n, key)

	if presign > 0 {
		u, err := store.PresignGet(ctx, key, presign)
		if err != nil {
			return err
		}
		r.writePlainln("%s", u)
	}
	return nil
}

func (r *Runner) export(ctx context.Context, w io.Writer, pageSize int) (int, error) {
	var n int
	err := r.withSession(ctx, func(ctx context.Context, s database.Session) error {
		var err error
		n, err = seed.Export(ctx, s, r.users, w, pageSize)
		return err
	})
	return n, err
}

func (r *Runner) withSession(ctx context.Context, fn func(context.Context, database.Session) error) error {
	db, err := r.openDB(ctx)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	started := time.Now()
	defer func() { r.logger.Debug("session closed", "elapsed", time.Since(started)) }()
	return database.WithSession(ctx, db, fn)
}

func (r *Runner) writePlainln(format string, args ...any) {
	fmt.Fprintf(r.output, format+"\n", args...)
}

func source(cmd *cli.Command) (file, object string, err error) {
	file, object = cmd.String("file"), cmd.String("object")
	if (file == "") == (object == "") {
		return "", "", errSource
	}
	return file, object, nil
}
