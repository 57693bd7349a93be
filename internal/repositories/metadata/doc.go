// Package metadata persists device-local key/value settings, such as the
// screen lock configuration and the biometric credential handle.
//
// The SQLite implementation (SQLiteRepository) works over dbx.DBTX, so the
// same repository type can be bound to a *sql.DB or to a *sql.Tx when several
// keys have to change together.
//
// Typical Usage
//
//	repo := metadata.NewSQLiteRepository(db)
//	_ = repo.Set(ctx, "timeout", []byte("5min"))
//	v, _ := repo.Get(ctx, "timeout")
package metadata
