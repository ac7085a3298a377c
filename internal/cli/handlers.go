package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/janduczek/retailsync/internal/config"
	"github.com/janduczek/retailsync/internal/etl"
	"github.com/janduczek/retailsync/internal/scheduler"
	"github.com/janduczek/retailsync/pkg/database"
	"github.com/janduczek/retailsync/pkg/logger"
)

// runtime bundles the config and store handles every command needs.
type runtime struct {
	cfg    *config.Config
	client *mongo.Client
	coll   *mongo.Collection
}

func setup() (*runtime, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger.Init("retailsync", cfg.LogLevel)

	client, err := database.ConnectMongo(cfg.MongoURI, cfg.OperationTimeout)
	if err != nil {
		return nil, err
	}

	return &runtime{
		cfg:    cfg,
		client: client,
		coll:   client.Database(cfg.DatabaseName).Collection(cfg.CollectionName),
	}, nil
}

func (r *runtime) close() {
	database.Disconnect(r.client)
}

func runLoad(opts *LoadOptions) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.close()

	_, err = executeLoad(context.Background(), rt, opts)
	return err
}

func executeLoad(ctx context.Context, rt *runtime, opts *LoadOptions) (*etl.Report, error) {
	sourcesFile := rt.cfg.SourcesFile
	if opts.SourcesFile != "" {
		sourcesFile = opts.SourcesFile
	}
	chunkSize := rt.cfg.ChunkSize
	if opts.ChunkSize > 0 {
		chunkSize = opts.ChunkSize
	}

	sources, err := config.LoadSources(sourcesFile)
	if err != nil {
		return nil, err
	}

	writer := etl.NewMongoWriter(rt.coll, rt.cfg.OperationTimeout)
	pipeline := etl.NewPipeline(sources.Sources, writer, chunkSize)

	report, err := pipeline.Run(ctx)
	if report != nil {
		printReport(report)
	}
	return report, err
}

func runIndexes() error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.close()

	mgr := etl.NewIndexManager(rt.coll, rt.cfg.OperationTimeout)
	names, err := mgr.Ensure(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Ensured %d indexes (spec version %d):\n", len(names), etl.IndexSpecsVersion)
	for _, name := range names {
		fmt.Printf("  - %s\n", name)
	}
	return nil
}

func runSchedule(opts *LoadOptions) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.close()

	sched, err := scheduler.New(rt.cfg.ScheduleTime, func(ctx context.Context) error {
		_, err := executeLoad(ctx, rt, opts)
		return err
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("Scheduler started; pipeline will run daily at %s", rt.cfg.ScheduleTime)
	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Infof("Scheduler stopped")
	return nil
}

func runVerify() error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.close()

	summary, err := etl.Verify(context.Background(), rt.coll, rt.cfg.OperationTimeout)
	if err != nil {
		return err
	}

	fmt.Printf("Total documents: %d\n", summary.TotalDocuments)
	fmt.Println("Per source:")
	for _, id := range sortedKeys(summary.PerSource) {
		fmt.Printf("  %-12s %10d docs  revenue %s\n", id, summary.PerSource[id], summary.RevenuePerSource[id].String())
	}
	fmt.Printf("Unique customers: %d\n", summary.UniqueCustomers)
	fmt.Printf("Unique products:  %d\n", summary.UniqueProducts)
	return nil
}

func runCleanup(yes bool) error {
	if !yes {
		return errors.New("refusing to drop the collection without --yes")
	}

	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithTimeout(context.Background(), rt.cfg.OperationTimeout)
	defer cancel()

	if err := rt.coll.Drop(ctx); err != nil {
		return errors.Wrap(err, "dropping collection")
	}
	fmt.Printf("Dropped collection %s.%s\n", rt.cfg.DatabaseName, rt.cfg.CollectionName)
	return nil
}

func printReport(r *etl.Report) {
	fmt.Printf("\nRun %s: %s\n", r.RunID, r.Status)
	fmt.Printf("  Rows read:           %d\n", r.RowsRead)
	fmt.Printf("  Transformed:         %d\n", r.Transformed)
	fmt.Printf("  Inserted:            %d\n", r.Inserted)
	fmt.Printf("  Replaced:            %d\n", r.Replaced)
	fmt.Printf("  Duplicates in batch: %d\n", r.DuplicatesInBatch)
	fmt.Printf("  Rejected:            %d\n", r.RejectedTotal())
	for _, reason := range sortedReasons(r.Rejected) {
		fmt.Printf("    %-16s %d\n", string(reason)+":", r.Rejected[reason])
	}
	fmt.Printf("  Chunks failed:       %d/%d\n", r.ChunksFailed, r.ChunksTotal)
	fmt.Printf("  Elapsed:             %s\n", r.Elapsed.Round(time.Millisecond))
	for _, s := range r.Sources {
		if s.Skipped {
			fmt.Printf("  Source %-10s skipped\n", s.SourceID)
			continue
		}
		fmt.Printf("  Source %-10s rows=%d inserted=%d replaced=%d chunksFailed=%d\n",
			s.SourceID, s.RowsRead, s.Inserted, s.Replaced, s.ChunksFailed)
	}
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedReasons(m map[etl.RejectReason]int64) []etl.RejectReason {
	keys := make([]etl.RejectReason, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
