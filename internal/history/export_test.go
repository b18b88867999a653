package history

import "context"

// TruncatePostgres empties the reports table between integration tests.
func TruncatePostgres(ctx context.Context, p *PostgresStore) error {
	_, err := p.pool.Exec(ctx, `TRUNCATE reports`)
	return err
}
