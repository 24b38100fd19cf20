package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ldi/focusbloom/internal/config"
	"github.com/ldi/focusbloom/internal/db"
	"github.com/ldi/focusbloom/internal/mcp"
	"github.com/ldi/focusbloom/internal/schedule"
	"github.com/ldi/focusbloom/internal/server"
	"github.com/ldi/focusbloom/internal/timer"
	"github.com/ldi/focusbloom/internal/ui"
	"github.com/ldi/focusbloom/internal/viewmodel"
	"github.com/ldi/focusbloom/pkg/models"
)

var (
	dbPath       string
	snapshotPath string
	verbose      bool

	cfg config.Config
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&dbPath, "db-path", cfg.DBPath, "Path to database file")
	flag.StringVar(&snapshotPath, "snapshot-path", cfg.SnapshotPath, "Path to snapshot file")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	var command string
	var args []string

	if flag.NArg() == 0 {
		selected, err := ui.RunMenu()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running menu: %v\n", err)
			os.Exit(1)
		}
		if selected == "" {
			os.Exit(0)
		}
		command = selected
		args = []string{}
	} else {
		command = flag.Arg(0)
		args = flag.Args()[1:]
	}

	switch command {
	case "init":
		err = runInit(args)
	case "mcp":
		err = runMCP(args)
	case "editor":
		err = runEditor(args)
	case "start":
		err = runStart(args)
	case "list-templates":
		err = runListTemplates(args)
	case "list-tasks":
		err = runListTasks(args)
	case "status":
		err = runStatus(args)
	case "web":
		err = runWeb(args)
	case "db":
		err = runDB(args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openDatabase() (*db.DB, error) {
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := database.Init(context.Background()); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func runInit(args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	bloomDir := filepath.Join(targetDir, ".focusbloom")
	if err := os.MkdirAll(bloomDir, 0755); err != nil {
		return fmt.Errorf("failed to create .focusbloom directory: %w", err)
	}
	fmt.Println("✓ Created .focusbloom/ directory")

	gitignorePath := filepath.Join(bloomDir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte("focusbloom.db*\n"), 0644); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}
	fmt.Println("✓ Created .focusbloom/.gitignore")

	// Default paths if not overridden by flags
	finalDbPath := dbPath
	if dbPath == cfg.DBPath {
		finalDbPath = filepath.Join(bloomDir, "focusbloom.db")
	}

	finalSnapshotPath := snapshotPath
	if snapshotPath == cfg.SnapshotPath {
		finalSnapshotPath = filepath.Join(bloomDir, "snapshot.jsonl")
	}

	database, err := db.Open(finalDbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := context.Background()
	if err := database.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	fmt.Printf("✓ Initialized database at %s\n", finalDbPath)

	if err := database.SaveSessionConfig(ctx, cfg.SessionConfig()); err != nil {
		return fmt.Errorf("failed to save session config: %w", err)
	}

	// Check if snapshot exists and import it
	if _, err := os.Stat(finalSnapshotPath); err == nil {
		if err := database.ImportSnapshot(ctx, finalSnapshotPath); err != nil {
			return fmt.Errorf("failed to import snapshot: %w", err)
		}
		fmt.Printf("✓ Imported snapshot from %s\n", finalSnapshotPath)
	}

	fmt.Println("✓ FocusBloom initialized successfully")
	return nil
}

func runMCP(args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	database.EnableAutoSnapshot(snapshotPath)

	s := mcp.NewServer(database)
	return mcp.Serve(s)
}

func runEditor(args []string) error {
	editorFlags := flag.NewFlagSet("editor", flag.ContinueOnError)
	templateName := editorFlags.String("template", "", "Template name to edit (empty creates a new one)")
	if err := editorFlags.Parse(args); err != nil {
		return err
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := context.Background()
	sessionCfg, err := database.GetSessionConfig(ctx)
	if err != nil {
		return err
	}

	vm := viewmodel.NewEditorViewModel(database, sessionCfg)
	if *templateName != "" {
		tpl, err := database.GetTemplateByName(ctx, *templateName)
		if err != nil {
			return err
		}
		if tpl == nil {
			return fmt.Errorf("template '%s' not found", *templateName)
		}
		if err := vm.Load(tpl); err != nil {
			return fmt.Errorf("failed to load template: %w", err)
		}
	}

	return ui.RunEditor(vm)
}

func runStart(args []string) error {
	startFlags := flag.NewFlagSet("start", flag.ContinueOnError)
	templateName := startFlags.String("template", "", "Apply this template for today and start it")
	if err := startFlags.Parse(args); err != nil {
		return err
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	task, err := pickTask(ctx, database, *templateName, startFlags.Args())
	if err != nil {
		return err
	}

	sessionCfg, err := database.GetSessionConfig(ctx)
	if err != nil {
		return err
	}

	runner := timer.NewRunner(database, task, sessionCfg)
	model := ui.NewTimerModel(runner, task.Name)
	program := tea.NewProgram(model)

	runErr := make(chan error, 1)
	go func() {
		runErr <- runner.Run(ctx)
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		stop()
		<-runErr
		return fmt.Errorf("failed to run timer UI: %w", err)
	}

	stop()
	if err := <-runErr; err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// pickTask resolves which task to run: an explicit id, a template applied for
// today, or the first pending task scheduled today.
func pickTask(ctx context.Context, database *db.DB, templateName string, args []string) (*models.Task, error) {
	if templateName != "" {
		return database.ApplyTemplate(ctx, templateName, time.Now())
	}

	if len(args) > 0 {
		task, err := database.GetTask(ctx, args[0])
		if err != nil {
			return nil, err
		}
		if task == nil {
			return nil, fmt.Errorf("task '%s' not found", args[0])
		}
		return task, nil
	}

	tasks, err := database.TasksOn(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if t.Status == models.TaskStatusPending {
			return t, nil
		}
	}
	return nil, fmt.Errorf("no pending task scheduled today; pass a task id or -template")
}

func runWeb(args []string) error {
	webFlags := flag.NewFlagSet("web", flag.ContinueOnError)
	addr := webFlags.String("addr", cfg.ListenAddr, "Address to listen on")
	if err := webFlags.Parse(args); err != nil {
		return err
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(database)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	return srv.Start(*addr)
}

func runDB(args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: focusbloom db <command> [arguments]")
		fmt.Println("\nCommands:")
		fmt.Println("  status    Show database status")
		return nil
	}

	command := args[0]
	subArgs := args[1:]

	switch command {
	case "status":
		return runStatus(subArgs)
	default:
		return fmt.Errorf("unknown db command: %s", command)
	}
}

func runListTemplates(args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := context.Background()
	templates, err := database.ListTemplates(ctx)
	if err != nil {
		return err
	}

	sessionCfg, err := database.GetSessionConfig(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%-20s %-25s %-10s %-8s %-10s %-8s\n", "NAME", "TASK", "TYPE", "START", "SESSIONS", "TOTAL")
	fmt.Println("-----------------------------------------------------------------------------------")
	for _, tpl := range templates {
		fmt.Printf("%-20s %-25s %-10s %-8s %-10d %dm\n",
			tpl.Name, tpl.TaskName, tpl.Type, tpl.StartTime, tpl.FocusSessions,
			schedule.TotalMinutes(tpl.FocusSessions, sessionCfg))
	}
	return nil
}

func runListTasks(args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	// Parse flags for filtering
	taskFlags := flag.NewFlagSet("list-tasks", flag.ContinueOnError)
	statusFilter := taskFlags.String("status", "", "Filter by status (pending, in_progress, completed, cancelled)")
	templateFilter := taskFlags.String("template", "", "Filter by template name")
	if err := taskFlags.Parse(args); err != nil {
		return err
	}

	var status *models.TaskStatus
	if *statusFilter != "" {
		s := models.TaskStatus(*statusFilter)
		status = &s
	}

	var templateName *string
	if *templateFilter != "" {
		templateName = templateFilter
	}

	ctx := context.Background()
	tasks, err := database.ListTasks(ctx, status, templateName)
	if err != nil {
		return err
	}

	fmt.Printf("%-30s %-15s %-13s %-13s %-12s\n", "NAME", "TEMPLATE", "START", "END", "STATUS")
	fmt.Println("---------------------------------------------------------------------------------------")
	for _, t := range tasks {
		fmt.Printf("%-30s %-15s %-13s %-13s %-12s\n",
			t.Name, t.TemplateName,
			t.Start.Local().Format("Jan 02 15:04"),
			t.End.Local().Format("Jan 02 15:04"),
			t.Status)
	}
	return nil
}

func runStatus(args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := context.Background()
	templates, err := database.ListTemplates(ctx)
	if err != nil {
		return err
	}

	tasks, err := database.ListTasks(ctx, nil, nil)
	if err != nil {
		return err
	}

	today, err := database.TasksOn(ctx, time.Now())
	if err != nil {
		return err
	}

	fmt.Println("FocusBloom Status")
	fmt.Println("=================")
	fmt.Printf("Templates:    %d\n", len(templates))
	fmt.Printf("Total Tasks:  %d\n", len(tasks))
	fmt.Printf("Tasks Today:  %d\n", len(today))

	// Count by status
	statusCounts := make(map[models.TaskStatus]int)
	for _, t := range tasks {
		statusCounts[t.Status]++
	}

	fmt.Println("\nTask Breakdown:")
	fmt.Printf("  Pending:     %d\n", statusCounts[models.TaskStatusPending])
	fmt.Printf("  In Progress: %d\n", statusCounts[models.TaskStatusInProgress])
	fmt.Printf("  Completed:   %d\n", statusCounts[models.TaskStatusCompleted])
	fmt.Printf("  Cancelled:   %d\n", statusCounts[models.TaskStatusCancelled])

	if len(today) > 0 {
		fmt.Println("\nToday's Schedule:")
		for _, t := range today {
			fmt.Printf("  %s - %s  %s (%s)\n",
				t.Start.Local().Format("15:04"), t.End.Local().Format("15:04"), t.Name, t.Status)
		}
	}

	return nil
}
