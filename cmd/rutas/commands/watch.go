package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/rutas/internal/config"
	"github.com/abdul-hamid-achik/rutas/pkg/codegen"
	"github.com/abdul-hamid-achik/rutas/pkg/collector"
	"github.com/abdul-hamid-achik/rutas/pkg/session"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate on every change",
	Long: `Generate once, then watch the module's Go sources and rutas.yaml and
regenerate after every change. Changes are debounced (watch.debounce in
rutas.yaml). Generated files are ignored.

Example:
  rutas watch
  rutas watch --json     One JSON line per rebuild`,
	Run: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	header("Watch")

	cfg, err := loadConfig(cmd)
	if err != nil {
		fail("failed to load config", err)
	}
	root, _, err := collector.FindModule(workDir)
	if err != nil {
		fail("failed to find module", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fail("failed to create file watcher", err)
	}
	defer func() { _ = watcher.Close() }()

	sourceDir := cfg.SourceDir
	if !filepath.IsAbs(sourceDir) {
		sourceDir = filepath.Join(root, sourceDir)
	}
	addWatchDirs(watcher, sourceDir)
	// rutas.yaml lives at the module root, which may be outside the source dir.
	_ = watcher.Add(root)

	var mu sync.Mutex
	rebuild := func(trigger string) {
		mu.Lock()
		defer mu.Unlock()
		rebuildOnce(cmd, trigger)
	}
	rebuild("")

	if !jsonOutput {
		fmt.Printf("  %s Watching %s for changes...\n\n", green("✓"), relToModule(root, sourceDir))
	}

	var debounceTimer *time.Timer

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Only react to write, create, remove, and rename events
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			// New directories are watched too.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					addWatchDirs(watcher, event.Name)
					continue
				}
			}

			if !watchable(event.Name, cfg) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			trigger := relToModule(root, event.Name)
			debounceTimer = time.AfterFunc(cfg.Watch.Debounce, func() {
				rebuild(trigger)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if !jsonOutput {
				fmt.Printf("  %s Watcher error: %v\n", yellow("Warning:"), err)
			}

		case <-signals:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			if !jsonOutput {
				fmt.Println("\n  Shutting down...")
			}
			return
		}
	}
}

// rebuildOnce reloads the config and regenerates, reporting the outcome
// as one line.
func rebuildOnce(cmd *cobra.Command, trigger string) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	out := WatchOutput{Time: time.Now().Format("15:04:05"), Trigger: trigger}

	if !jsonOutput && trigger != "" {
		fmt.Printf("  [%s] %s %s changed, regenerating...\n", out.Time, yellow("→"), trigger)
	}

	cfg, err := loadConfig(cmd)
	if err == nil {
		var result *session.Result
		result, err = newSession(cfg, false).Run(context.Background())
		if result != nil {
			out.Routes = len(result.Routes)
			out.Written = result.Written
			out.Removed = result.Removed
		}
	}

	if jsonOutput {
		if err != nil {
			out.Error = err.Error()
		}
		printJSON(out)
		return
	}
	if err != nil {
		fmt.Printf("  [%s] %s %v\n", out.Time, red("✗"), err)
		return
	}
	fmt.Printf("  [%s] %s %d routes, %d file(s) changed\n", out.Time, green("✓"), out.Routes, len(out.Written)+len(out.Removed))
}

// addWatchDirs watches dir and its subdirectories, skipping the folders
// source discovery skips.
func addWatchDirs(watcher *fsnotify.Watcher, dir string) {
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && collector.IsSkippedFolder(d.Name()) {
				return filepath.SkipDir
			}
			_ = watcher.Add(path)
		}
		return nil
	})
}

// watchable reports whether a change to path should trigger a rebuild.
func watchable(path string, cfg *config.Config) bool {
	name := filepath.Base(path)
	if name == config.FileName || (cfg.File != "" && filepath.Clean(path) == filepath.Clean(cfg.File)) {
		return true
	}
	if filepath.Ext(name) != ".go" || strings.HasSuffix(name, "_test.go") {
		return false
	}
	if strings.HasPrefix(name, codegen.GeneratedFilePrefix) || strings.HasPrefix(name, ".") {
		return false
	}
	// The dispatcher is rewritten by every rebuild.
	return !(name == codegen.DispatcherFileName && strings.HasSuffix(filepath.ToSlash(filepath.Dir(path)), filepath.ToSlash(filepath.Clean(cfg.OutputDir))))
}
