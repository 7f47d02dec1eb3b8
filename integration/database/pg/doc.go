// Package pg manages PostgreSQL connectivity with pgx.
//
// Connect builds a pgxpool.Pool from Config and verifies it with retries and
// exponential backoff. Migrate and MigrateFS apply goose migrations through a
// database/sql view of the pool. Healthcheck returns a probe for readiness
// endpoints.
//
//	pool, err := pg.Connect(ctx, cfg.Postgres)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.MigrateFS(ctx, pool, db.Migrations, "migrations", cfg.Postgres, log); err != nil {
//		return err
//	}
//
// Transactions travel in the context: InTx begins one, stores it with WithTx
// and commits when fn succeeds; repositories pick it up with TxFromContext
// (or Querier) so several calls share one transaction.
//
// IsNotFoundError, IsDuplicateKeyError, IsForeignKeyViolationError and
// IsTxClosedError classify driver errors.
package pg
