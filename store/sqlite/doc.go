// Package sqlite provides a SQLite-backed details store.
//
// It is a convenient single-file home for the details tier when the summary
// tier lives elsewhere (for example in Redis Stack). The database file is
// created on first use and the schema is initialized by NewDetailsStore.
//
//	details, err := sqlite.NewDetailsStore(sqlite.Options{Path: "./catalog.db"})
//	if err != nil {
//		return err
//	}
//	defer details.Close()
package sqlite
