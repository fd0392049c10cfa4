// Package dbtest holds doubles for the database package used by service tests.
package dbtest

import (
	"context"
	"database/sql"
)

// Runner runs the callback with a nil transaction and counts outcomes.
type Runner struct {
	Commits   int
	Rollbacks int
}

func (r *Runner) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	if err := fn(nil); err != nil {
		r.Rollbacks++
		return err
	}
	r.Commits++
	return nil
}
