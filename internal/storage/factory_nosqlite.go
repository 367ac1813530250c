//go:build !sqlite

package storage

import "fmt"

func newSQLiteStore(dbPath string) (Store, error) {
	return nil, fmt.Errorf("%w: %s trace store for %q requires building regionctl with -tags sqlite", ErrTraceStoreMissing, KindSQLite, dbPath)
}
