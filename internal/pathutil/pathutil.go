// Package pathutil manages application file paths and locations
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"

	"github.com/ayoisaiah/autotrack/internal/osutil"
)

const envName = "AUTOTRACK_ENV"

// Paths holds all application path configurations.
type Paths struct {
	configDir        string
	configFileName   string
	dbFileName       string
	activityFileName string
	logFileName      string

	// Computed absolute paths
	configFilePath   string
	dataDir          string
	dbFilePath       string
	activityFilePath string
	logFilePath      string
}

var (
	paths *Paths
	once  sync.Once
)

// Initialize must be called once at program startup.
func Initialize() error {
	var initErr error

	once.Do(func() {
		paths = &Paths{
			configDir:        "autotrack",
			configFileName:   "config.yml",
			dbFileName:       "autotrack.db",
			activityFileName: "activity.db",
			logFileName:      "autotrack.log",
		}

		paths.applyEnvironmentOverrides()
		initErr = paths.computePaths()
	})

	return initErr
}

// Must panics if paths haven't been initialized.
func Must() *Paths {
	if paths == nil {
		panic("pathutil.Initialize() must be called before accessing paths")
	}

	return paths
}

func Dir() string {
	return Must().configDir
}

func ConfigFilePath() string {
	return Must().configFilePath
}

func DataDir() string {
	return Must().dataDir
}

func DBFilePath() string {
	return Must().dbFilePath
}

// ActivityFilePath is the default location of the watcher database.
func ActivityFilePath() string {
	return Must().activityFilePath
}

func LogFilePath() string {
	return Must().logFilePath
}

func (p *Paths) applyEnvironmentOverrides() {
	env := strings.TrimSpace(os.Getenv(envName))
	if env != "" {
		p.configFileName = fmt.Sprintf("config_%s.yml", env)
		p.dbFileName = fmt.Sprintf("autotrack_%s.db", env)
		p.activityFileName = fmt.Sprintf("activity_%s.db", env)
		p.logFileName = fmt.Sprintf("autotrack_%s.log", env)
	}
}

func (p *Paths) computePaths() error {
	var err error

	relPath := filepath.Join(p.configDir, p.configFileName)

	p.configFilePath, err = xdg.ConfigFile(relPath)
	if err != nil {
		return err
	}

	p.dataDir, err = xdg.DataFile(p.configDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(p.dataDir, osutil.DirPermission); err != nil {
		return err
	}

	p.dbFilePath = filepath.Join(p.dataDir, p.dbFileName)

	p.activityFilePath = filepath.Join(p.dataDir, p.activityFileName)

	p.logFilePath = filepath.Join(p.dataDir, "log", p.logFileName)

	return nil
}

// StripExtension returns the input file name without its extension.
func StripExtension(fileName string) string {
	return fileName[:len(fileName)-len(filepath.Ext(fileName))]
}
