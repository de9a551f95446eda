package dbhandler

import (
	"context"
	"database/sql"

	"github.com/behrang/sqlbatch"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const codeSerializationFailure = "40001"

// DBHandler contains a connection to database.
type DBHandler struct {
	DB *sql.DB
}

func Open(uri string) (*DBHandler, error) {
	db, err := sql.Open("postgres", uri)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &DBHandler{DB: db}, nil
}

func (handler DBHandler) Close() error {
	return handler.DB.Close()
}

// Batch creates a transaction and executes the batch of commands in that transaction.
// If a retryable error is received, the batch is retried.
func (handler DBHandler) Batch(opts *sql.TxOptions, commands []sqlbatch.Command) ([]interface{}, error) {

	for {
		results, err := handler.tryBatch(opts, commands)
		if isRetryable(err) {
			log.Warn().Err(err).Msg("🟡 Retryable Postgres error, retrying")
			continue
		}
		return results, err
	}
}

func (handler DBHandler) tryBatch(opts *sql.TxOptions, commands []sqlbatch.Command) (results []interface{}, err error) {

	results = make([]interface{}, len(commands))

	tx, err := handler.DB.BeginTx(context.Background(), opts)
	if err != nil {
		return
	}
	defer tx.Rollback()

	results, err = sqlbatch.Batch(tx, commands)

	if err == nil {
		err = tx.Commit()
	}

	return
}

// Transaction runs fn inside one transaction and commits only if fn returns no error.
// It is never retried, since fn may have effects outside the database.
func (handler DBHandler) Transaction(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {

	tx, err := handler.DB.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func isRetryable(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == codeSerializationFailure
}
