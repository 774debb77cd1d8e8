// Package database provides SQLite connectivity for the embedded sample store.
//
// Open prepares the database file (directory, busy timeout, optional WAL
// mode, 0600 permissions) and Migrate applies the up migrations found in an
// fs.FS, recording each in the schema_migrations table. The schema itself
// lives in the migrations package so it can be embedded into the binary.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// All queries issued against the database use parameterised statements.
package database
