package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/analyzer"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/api"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/inventory"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/report"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/rules"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/security"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/shared"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/storage"
	"github.com/Bolliboinapavansai/vmware-exit-intelligence-agent/internal/vsphere"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "analyze":
		analyzeCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "diff":
		diffCmd(os.Args[2:])
	case "collect":
		collectCmd(os.Args[2:])
	case "serve":
		serveCmd(os.Args[2:])
	case "user-add":
		userAddCmd(os.Args[2:])
	case "version":
		fmt.Println("vmexit, record contract:", report.Version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `vmexit - VMware Exit Intelligence Agent

Usage:
  vmexit analyze  --input <inventory.json> --rules <rules.yaml> --out <reports-dir> [--db ./vmexit.db] [--workers N] [--config ./vmexit.yaml]
  vmexit report   --run <run-id> --out <reports-dir> [--db ./vmexit.db] [--config ./vmexit.yaml]
  vmexit diff     --base <run-id> --head <run-id> --out <reports-dir> [--db ./vmexit.db]
  vmexit collect  --out <inventory.json> [--config ./vmexit.yaml]
  vmexit serve    [--addr :8080] [--db ./vmexit.db] [--rules <rules.yaml>] [--config ./vmexit.yaml]
  vmexit user-add --username <name> --password <pw> [--role viewer|admin] [--db ./vmexit.db]
  vmexit version
`)
}

func analyzeCmd(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	inPath := fs.String("input", "", "Path to inventory JSON")
	rulesPath := fs.String("rules", "", "Path to classification rule catalog")
	outDir := fs.String("out", "", "Output directory for reports")
	dbPath := fs.String("db", "", "SQLite database path")
	workers := fs.Int("workers", 0, "Batch fan-out width (0 = NumCPU)")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	// precedence: flags > config > defaults
	if *inPath == "" {
		*inPath = cfg.Analysis.Inventory
	}
	if *rulesPath == "" {
		*rulesPath = cfg.Analysis.Rules
	}
	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *workers == 0 {
		*workers = cfg.Analysis.Workers
	}
	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "analyze: --input (or analysis.inventory in config) is required")
		os.Exit(2)
	}

	engine, err := rules.NewEngine(*rulesPath)
	if err != nil {
		slog.Error("rule catalog error", "err", err)
		os.Exit(1)
	}

	vms, diags, err := inventory.Load(*inPath)
	if err != nil {
		slog.Error("inventory load error", "err", err)
		os.Exit(1)
	}
	if len(diags.Warnings) > 0 {
		slog.Warn("inventory warnings", "warnings", diags.Warnings)
	}

	records, err := analyzer.Analyze(context.Background(), engine, vms, analyzer.Options{Workers: *workers})
	if err != nil {
		slog.Error("analyze error", "err", err)
		os.Exit(1)
	}

	run := report.Run{
		ID:        "run-" + uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Source:    filepath.Clean(*inPath),
		Version:   report.Version,
		Context:   report.Context{RulesPath: filepath.Clean(*rulesPath), Workers: *workers},
		Records:   records,
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}

	// Suppressions hide accepted records from rendered reports only; the
	// stored run keeps the full record list.
	sups, _ := db.ListSuppressions(true)
	kept, suppressed := analyzer.ApplySuppressions(run.Records, sups)
	run.Context.Suppressed = suppressed

	if err := db.SaveRun(&run); err != nil {
		slog.Error("db save run error", "err", err)
		os.Exit(1)
	}
	if suppressed > 0 {
		slog.Info("suppressions applied", "suppressed", suppressed)
		run.Records = kept
	}

	jsonPath, err := report.WriteJSON(*outDir, &run)
	if err != nil {
		slog.Error("write json error", "err", err)
		os.Exit(1)
	}
	csvPath, err := report.WriteCSV(*outDir, &run)
	if err != nil {
		slog.Error("write csv error", "err", err)
		os.Exit(1)
	}
	mdPath, err := report.WriteMarkdown(*outDir, &run)
	if err != nil {
		slog.Error("write markdown error", "err", err)
		os.Exit(1)
	}

	slog.Info("analyze complete",
		"run", run.ID,
		"vms", len(vms),
		"json", jsonPath,
		"csv", csvPath,
		"markdown", mdPath,
		"db", filepath.Clean(*dbPath),
	)
	fmt.Printf("Analyze OK\n  Run: %s\n  JSON: %s\n  CSV: %s\n  Markdown: %s\n  DB: %s\n",
		run.ID, jsonPath, csvPath, mdPath, filepath.Clean(*dbPath))
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	runID := fs.String("run", "", "Run ID")
	outDir := fs.String("out", "", "Output directory")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *runID == "" {
		fmt.Fprintln(os.Stderr, "report: --run is required")
		os.Exit(2)
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	run, err := db.LoadRun(*runID)
	if err != nil {
		slog.Error("load run error", "err", err)
		os.Exit(1)
	}
	jsonPath, err := report.WriteRunJSON(*outDir, &run)
	if err != nil {
		slog.Error("write json error", "err", err)
		os.Exit(1)
	}
	csvPath, _ := report.WriteCSV(*outDir, &run)
	mdPath, _ := report.WriteMarkdown(*outDir, &run)
	fmt.Printf("Report OK\n  Run: %s\n  JSON: %s\n  CSV: %s\n  Markdown: %s\n", run.ID, jsonPath, csvPath, mdPath)
}

func diffCmd(args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	base := fs.String("base", "", "Base run ID")
	head := fs.String("head", "", "Head run ID")
	outDir := fs.String("out", "", "Output directory")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *outDir == "" {
		*outDir = cfg.Reporting.OutDir
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *base == "" || *head == "" {
		fmt.Fprintln(os.Stderr, "diff: --base and --head are required")
		os.Exit(2)
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	br, err := db.LoadRun(*base)
	if err != nil {
		slog.Error("load base run error", "err", err)
		os.Exit(1)
	}
	hr, err := db.LoadRun(*head)
	if err != nil {
		slog.Error("load head run error", "err", err)
		os.Exit(1)
	}
	path, err := report.WriteDiffJSON(*outDir, &br, &hr)
	if err != nil {
		slog.Error("write diff error", "err", err)
		os.Exit(1)
	}
	fmt.Printf("Diff OK\n  %s\n", path)
}

func collectCmd(args []string) {
	fs := flag.NewFlagSet("collect", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	outPath := fs.String("out", "", "Output inventory JSON path")
	timeout := fs.Duration("timeout", 5*time.Minute, "Collection timeout")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *outPath == "" {
		*outPath = "./inventory.json"
	}
	if cfg.VCenter.Host == "" {
		fmt.Fprintln(os.Stderr, "collect: vcenter.host (or VSPHERE_HOST) is required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	col := vsphere.NewCollector(vsphere.Credentials{
		Host:       cfg.VCenter.Host,
		Username:   cfg.VCenter.Username,
		Password:   cfg.VCenter.Password,
		Datacenter: cfg.VCenter.Datacenter,
		Insecure:   cfg.VCenter.Insecure,
	})
	if err := col.Connect(ctx); err != nil {
		slog.Error("vCenter connect error", "err", err)
		os.Exit(1)
	}
	defer func() { _ = col.Disconnect(ctx) }()

	vms, err := col.CollectVMs(ctx)
	if err != nil {
		slog.Error("collect error", "err", err)
		os.Exit(1)
	}
	if err := inventory.Save(*outPath, vms); err != nil {
		slog.Error("write inventory error", "err", err)
		os.Exit(1)
	}
	slog.Info("collect complete", "vms", len(vms), "out", *outPath)
	fmt.Printf("Collect OK\n  VMs: %d\n  Inventory: %s\n", len(vms), *outPath)
}

func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	addr := fs.String("addr", "", "Listen address")
	dbPath := fs.String("db", "", "SQLite database path")
	rulesPath := fs.String("rules", "", "Path to classification rule catalog")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	logger := shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *addr == "" {
		*addr = cfg.API.Addr
	}
	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *rulesPath == "" {
		*rulesPath = cfg.Analysis.Rules
	}

	engine, err := rules.NewEngine(*rulesPath)
	if err != nil {
		slog.Error("rule catalog error", "err", err)
		os.Exit(1)
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}
	_ = db.PurgeExpiredSessions()

	sessionDur, err := time.ParseDuration(cfg.API.SessionDuration)
	if err != nil || sessionDur <= 0 {
		sessionDur = 12 * time.Hour
	}

	srv := &api.Server{
		DB:              db,
		UserStore:       db,
		Logger:          logger,
		Catalog:         engine.Catalog(),
		SessionDuration: sessionDur,
	}
	slog.Info("serving API", "addr", *addr)
	if err := http.ListenAndServe(*addr, srv.Routes()); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

func userAddCmd(args []string) {
	fs := flag.NewFlagSet("user-add", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	username := fs.String("username", "", "Username")
	password := fs.String("password", "", "Password")
	role := fs.String("role", "viewer", "Role (viewer|admin)")
	dbPath := fs.String("db", "", "SQLite database path")
	_ = fs.Parse(args)

	cfg, _ := shared.LoadConfig(*configPath)
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)

	if *dbPath == "" {
		*dbPath = cfg.Database.DSN
	}
	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "user-add: --username and --password are required")
		os.Exit(2)
	}

	db, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		slog.Error("db open error", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.CreateSchema(); err != nil {
		slog.Error("db schema error", "err", err)
		os.Exit(1)
	}

	hash, err := security.HashPassword(*password)
	if err != nil {
		slog.Error("hash error", "err", err)
		os.Exit(1)
	}
	id, err := db.CreateUser(*username, hash, *role)
	if err != nil {
		slog.Error("create user error", "err", err)
		os.Exit(1)
	}
	fmt.Printf("User OK\n  ID: %d\n  Username: %s\n  Role: %s\n", id, *username, *role)
}
