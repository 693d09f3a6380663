package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/adrianwalker/ftpserver-filesystem/internal/logger"
	"github.com/adrianwalker/ftpserver-filesystem/pkg/config"
	"github.com/adrianwalker/ftpserver-filesystem/pkg/vfs"
)

// user is the minimal identity handed to the filesystem factory. A real FTP
// front end supplies its own authenticated user type here.
type user struct {
	name string
	home string
}

func (u *user) Name() string          { return u.name }
func (u *user) HomeDirectory() string { return u.home }

func createInitialStructure(ctx context.Context, view *vfs.View) error {
	docs, err := view.File(ctx, "documents")
	if err != nil {
		return fmt.Errorf("failed to resolve documents directory: %w", err)
	}
	if !docs.Exists() && !docs.Mkdir(ctx) {
		return fmt.Errorf("failed to create documents directory")
	}

	textFiles := []struct {
		name    string
		content string
	}{
		{"readme.txt", "Welcome to your FTP home directory.\n"},
		{"documents/notes.txt", "Files uploaded here are stored durably.\n"},
	}

	for _, txt := range textFiles {
		file, err := view.File(ctx, txt.name)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", txt.name, err)
		}
		if file.Exists() {
			continue
		}

		w, err := file.OpenWriter(ctx, 0)
		if err != nil {
			return fmt.Errorf("failed to open writer for %s: %w", txt.name, err)
		}
		if _, err := io.WriteString(w, txt.content); err != nil {
			w.Close()
			return fmt.Errorf("failed to write %s: %w", txt.name, err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", txt.name, err)
		}
	}

	return nil
}

func listStructure(ctx context.Context, view *vfs.View, name string, indent string) error {
	dir, err := view.File(ctx, name)
	if err != nil {
		return err
	}

	children, err := dir.ListFiles(ctx)
	if err != nil {
		return err
	}

	for _, child := range children {
		marker := ""
		if child.IsDirectory() {
			marker = "/"
		}
		fmt.Printf("%s%s%s\n", indent, child.Name(), marker)

		if child.IsDirectory() {
			if err := listStructure(ctx, view, name+"/"+child.Name(), indent+"  "); err != nil {
				return err
			}
		}
	}

	return nil
}

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	logLevel := flag.String("log-level", "", "Log level override (DEBUG, INFO, WARN, ERROR)")
	userName := flag.String("user", "demo", "User to create a filesystem view for")
	homeDir := flag.String("home", "", "Home directory for the user (defaults to /<user>)")
	seed := flag.Bool("seed", false, "Create an initial file structure in the user's home")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Output); err != nil {
		log.Fatalf("Failed to configure logger: %v", err)
	}

	fmt.Println("ftpfs - FTP virtual filesystem")
	logger.Info("Log level set to: %s", cfg.Logging.Level)
	logger.Info("Store type: %s", cfg.Store.Type)

	ctx := context.Background()

	st, err := config.CreateStore(ctx, &cfg.Store)
	if err != nil {
		log.Fatalf("Failed to create store: %v", err)
	}
	if closer, ok := st.(io.Closer); ok {
		defer closer.Close()
	}

	factory, err := vfs.NewFactory(st)
	if err != nil {
		log.Fatalf("Failed to create filesystem factory: %v", err)
	}

	home := *homeDir
	if home == "" {
		home = "/" + *userName
	}

	view, err := factory.CreateView(&user{name: *userName, home: home})
	if err != nil {
		log.Fatalf("Failed to create filesystem view: %v", err)
	}
	defer view.Dispose()

	homePath, err := view.HomeDirectory(ctx)
	if err != nil {
		log.Fatalf("Failed to resolve home directory: %v", err)
	}
	logger.Info("Home directory ready: %v", homePath)

	if *seed {
		if err := createInitialStructure(ctx, view); err != nil {
			log.Fatalf("Failed to create initial structure: %v", err)
		}
		logger.Info("Initial file structure created")
	}

	fmt.Printf("%v/\n", homePath)
	if err := listStructure(ctx, view, ".", "  "); err != nil {
		logger.Error("Failed to list home directory: %v", err)
		os.Exit(1)
	}
}
