package backend

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/sandstorm/dbkit/pkg/common"
	"github.com/sandstorm/dbkit/pkg/common/config"
	"github.com/sandstorm/dbkit/pkg/mysql"
	"github.com/sandstorm/dbkit/pkg/sqlite"
	"github.com/sandstorm/dbkit/pkg/util"
)

const DropinFile = "db.php"

// Resolution is the outcome of backend detection. It is computed once per
// process and handed to the commands.
type Resolution struct {
	Engine string
	// Reason names the detector which picked the embedded engine.
	Reason string
}

func (r Resolution) IsEmbedded() bool {
	return r.Engine == sqlite.NAME
}

type detector interface {
	Name() string
	Detect(cfg *config.Config) bool
}

var detectors = [...]detector{
	engineConstant{},
	dropinConstant{},
	dropinFile{},
}

// Resolve checks the detectors in order; the first hit selects the embedded
// engine, otherwise the client/server engine is used.
func Resolve(cfg *config.Config) Resolution {
	for _, d := range detectors {
		if d.Detect(cfg) {
			pterm.Debug.Printfln("SQLite detected through %s", d.Name())
			return Resolution{Engine: sqlite.NAME, Reason: d.Name()}
		}
	}
	pterm.Debug.Println("Using MySQL")
	return Resolution{Engine: mysql.NAME}
}

// New builds the backend chosen by r.
func New(r Resolution, cfg *config.Config, runner util.Runner) common.DatabaseBackend {
	if r.IsEmbedded() {
		return sqlite.NewBackend(cfg, runner)
	}
	return mysql.NewBackend(mysql.CredentialsFromConfig(cfg), runner)
}

type engineConstant struct{}

func (engineConstant) Name() string { return "DB_ENGINE" }

func (engineConstant) Detect(cfg *config.Config) bool {
	return cfg.Constant("DB_ENGINE") == sqlite.NAME
}

type dropinConstant struct{}

func (dropinConstant) Name() string { return "SQLITE_DB_DROPIN_VERSION" }

func (dropinConstant) Detect(cfg *config.Config) bool {
	return cfg.Defined("SQLITE_DB_DROPIN_VERSION")
}

type dropinFile struct{}

func (dropinFile) Name() string { return DropinFile }

func (dropinFile) Detect(cfg *config.Config) bool {
	content, err := os.ReadFile(filepath.Join(cfg.ContentDir(), DropinFile))
	if err != nil {
		return false
	}
	return strings.Contains(string(content), "SQLITE_DB_DROPIN_VERSION")
}
