package mysql

import (
	"database/sql"
	"fmt"
	"io"
	"slices"

	"github.com/jamf/go-mysqldump"
	"github.com/pterm/pterm"
)

const maxAllowedPacket = 4194304

// dumpInProcess writes a dump through go-mysqldump. It is used when the
// mysqldump binary is not installed and only knows about ignoring tables, so
// an include list is turned into the complementary ignore list.
func dumpInProcess(db *sql.DB, w io.Writer, allTables []string, include []string, exclude []string) error {
	ignore := slices.Clone(exclude)
	if len(include) > 0 {
		for _, table := range allTables {
			if !slices.Contains(include, table) && !slices.Contains(ignore, table) {
				ignore = append(ignore, table)
			}
		}
	}

	pterm.Debug.Printfln("mysqldump binary not found, dumping in process (ignoring %v)", ignore)
	dumper := &mysqldump.Data{
		Out:              w,
		Connection:       db,
		IgnoreTables:     ignore,
		MaxAllowedPacket: maxAllowedPacket,
	}
	// Close is not called: it would close the shared connection and the
	// caller's writer.
	if err := dumper.Dump(); err != nil {
		return fmt.Errorf("error dumping: %w", err)
	}
	return nil
}
