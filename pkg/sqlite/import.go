package sqlite

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

type ImportResult struct {
	Executed int
	Failed   int
}

type Importer struct {
	translator *Translator
	// OnFailure is called for every statement the database rejected. The
	// import carries on with the next statement afterwards.
	OnFailure func(statement string, err error)
}

func NewImporter(translator *Translator) *Importer {
	return &Importer{
		translator: translator,
		OnFailure: func(statement string, err error) {
			pterm.Warning.Printfln("Could not execute statement: %s\n%s", statement, err)
		},
	}
}

// Import executes every statement read from r. Statement failures are
// reported through OnFailure and counted; only read errors and a cancelled
// context abort the import.
func (i *Importer) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var result ImportResult
	statements := NewStatementReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		stmt, err := statements.ReadStatement()
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return result, fmt.Errorf("read dump: %w", err)
		}

		if _, err := i.translator.Query(ctx, stmt); err != nil {
			result.Failed++
			if i.OnFailure != nil {
				i.OnFailure(stmt, err)
			}
			continue
		}
		result.Executed++
	}
}
