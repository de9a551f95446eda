package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/behrang/sqlbatch"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"treasury/domain"
)

const (
	sqlLedgerCreateTable = `
	create table if not exists ledger_entries (
		asset        text primary key,
		custodied    numeric(78, 0) not null default 0 check (custodied >= 0),
		deployed     numeric(78, 0) not null default 0 check (deployed >= 0),
		realized     numeric(78, 0) not null default 0 check (realized >= 0),
		seq          serial,
		update_time  timestamptz not null default now()
	)
`

	sqlReceiptCreateTable = `
	create table if not exists receipts (
		id           uuid primary key,
		kind         text not null,
		caller       text not null,
		asset_in     text not null,
		asset_out    text,
		requested    numeric(78, 0) not null,
		actual       numeric(78, 0) not null,
		yield        numeric(78, 0) not null,
		status       text,
		tx_hashes    jsonb not null,
		create_time  timestamptz not null
	)
`

	sqlLedgerInsertIfNotExists = `
	insert into ledger_entries (asset)
		values ($1)
	on conflict (asset) do nothing
`

	sqlLedgerFindAll = `
	select
		asset, custodied::text, deployed::text, realized::text
	from ledger_entries
	order by seq
`

	sqlLedgerFindAllForUpdate = sqlLedgerFindAll + `
	for update
`

	sqlLedgerUpdate = `
	update ledger_entries
		set custodied = $2::numeric, deployed = $3::numeric, realized = $4::numeric, update_time = now()
	where asset = $1
`

	sqlReceiptInsert = `
	insert into receipts (
			id, kind, caller, asset_in, asset_out, requested, actual, yield, status, tx_hashes, create_time
		)
		values (
			$1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric, $9, $10::jsonb, $11
		)
`

	sqlReceiptFindLatest = `
	select
		id, kind, caller, asset_in, asset_out, requested::text, actual::text, yield::text, status, tx_hashes, create_time
	from receipts
	order by create_time desc
	limit $1
`
)

// LedgerRepository keeps the treasury ledger and its receipts in Postgres. Atomically
// locks every ledger row for the whole operation, so operations are serialized and
// the ledger rows and the receipt are committed in one transaction.
type LedgerRepository struct {
	handler TxHandler
}

func NewLedgerRepository(db TxHandler) *LedgerRepository {
	return &LedgerRepository{handler: db}
}

func (repo *LedgerRepository) EnsureSchema() error {
	_, err := repo.handler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{Query: sqlLedgerCreateTable},
		{Query: sqlReceiptCreateTable},
	})
	return err
}

// Seed adds a zero entry for every asset the ledger does not know yet.
func (repo *LedgerRepository) Seed(assets []common.Address) error {
	commands := make([]sqlbatch.Command, 0, len(assets))
	for _, asset := range assets {
		commands = append(commands, sqlbatch.Command{
			Query: sqlLedgerInsertIfNotExists,
			Args:  []interface{}{asset.Hex()},
		})
	}
	_, err := repo.handler.Batch(&BatchOptionNormal, commands)
	return err
}

func (repo *LedgerRepository) Atomically(ctx context.Context, work domain.Work) (*domain.Receipt, error) {
	var receipt *domain.Receipt

	err := repo.handler.Transaction(ctx, &BatchOptionNormal, func(tx *sql.Tx) error {
		results, err := sqlbatch.Batch(tx, []sqlbatch.Command{
			{
				Query:   sqlLedgerFindAllForUpdate,
				Init:    make([]domain.LedgerEntry, 0),
				ReadAll: readAllEntries,
			},
		})
		if err != nil {
			return err
		}
		entries, _ := results[0].([]domain.LedgerEntry)

		ledger := domain.LoadLedger(entries)
		before := ledger.Clone()

		receipt, err = work(ctx, ledger)
		if err != nil {
			return err
		}

		commands := make([]sqlbatch.Command, 0)
		for _, entry := range ledger.Changed(before) {
			commands = append(commands, sqlbatch.Command{
				Query: sqlLedgerUpdate,
				Args: []interface{}{
					entry.Asset.Hex(), entry.Custodied.String(), entry.Deployed.String(), entry.Realized.String(),
				},
				Affect: 1,
			})
		}
		insert, err := receiptInsertCommand(receipt)
		if err != nil {
			return err
		}
		commands = append(commands, insert)

		_, err = sqlbatch.Batch(tx, commands)
		return err
	})
	if err != nil {
		return nil, err
	}

	return receipt, nil
}

func (repo *LedgerRepository) Snapshot(ctx context.Context) (*domain.Ledger, error) {
	results, err := repo.handler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlLedgerFindAll,
			Init:    make([]domain.LedgerEntry, 0),
			ReadAll: readAllEntries,
		},
	})
	if err != nil {
		return nil, err
	}
	entries, _ := results[0].([]domain.LedgerEntry)
	return domain.LoadLedger(entries), nil
}

func (repo *LedgerRepository) Receipts(ctx context.Context, limit int) ([]domain.Receipt, error) {
	if limit <= 0 {
		limit = 100
	}
	results, err := repo.handler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlReceiptFindLatest,
			Args:    []interface{}{limit},
			Init:    make([]domain.Receipt, 0),
			ReadAll: readAllReceipts,
		},
	})
	if err != nil {
		return nil, err
	}
	result, _ := results[0].([]domain.Receipt)
	return result, nil
}

func receiptInsertCommand(receipt *domain.Receipt) (sqlbatch.Command, error) {
	if receipt == nil {
		return sqlbatch.Command{}, fmt.Errorf("operation returned no receipt")
	}
	hashesJson, err := json.Marshal(receipt.TxHashes)
	if err != nil {
		return sqlbatch.Command{}, err
	}

	var assetOut interface{}
	if receipt.AssetOut != (common.Address{}) {
		assetOut = receipt.AssetOut.Hex()
	}
	var status interface{}
	if receipt.Status != "" {
		status = string(receipt.Status)
	}

	return sqlbatch.Command{
		Query: sqlReceiptInsert,
		Args: []interface{}{
			receipt.ID.String(), string(receipt.Kind), receipt.Caller.Hex(), receipt.AssetIn.Hex(), assetOut,
			receipt.Requested.String(), receipt.Actual.String(), receipt.Yield.String(), status, hashesJson, receipt.CreatedAt,
		},
		Affect: 1,
	}, nil
}

func readAllEntries(memo interface{}, scan func(...interface{}) error) (interface{}, error) {
	var asset, custodied, deployed, realized string
	list := memo.([]domain.LedgerEntry)

	err := scan(&asset, &custodied, &deployed, &realized)
	if err != nil {
		return list, err
	}

	entry := domain.NewLedgerEntry(common.HexToAddress(asset))
	if entry.Custodied, err = parseNumeric(custodied); err != nil {
		return list, err
	}
	if entry.Deployed, err = parseNumeric(deployed); err != nil {
		return list, err
	}
	if entry.Realized, err = parseNumeric(realized); err != nil {
		return list, err
	}

	list = append(list, entry)
	return list, nil
}

func readAllReceipts(memo interface{}, scan func(...interface{}) error) (interface{}, error) {
	var (
		id, kind, caller, assetIn     string
		assetOut, status              sql.NullString
		requested, actual, yieldValue string
		hashesJson                    []byte
		createTime                    time.Time
	)
	list := memo.([]domain.Receipt)

	err := scan(&id, &kind, &caller, &assetIn, &assetOut, &requested, &actual, &yieldValue, &status, &hashesJson, &createTime)
	if err != nil {
		return list, err
	}

	r := domain.Receipt{
		Kind:      domain.OperationKind(kind),
		Caller:    common.HexToAddress(caller),
		AssetIn:   common.HexToAddress(assetIn),
		Status:    domain.ReceiptStatus(status.String),
		CreatedAt: createTime.UTC(),
	}
	if assetOut.Valid {
		r.AssetOut = common.HexToAddress(assetOut.String)
	}
	if r.ID, err = uuid.Parse(id); err != nil {
		return list, err
	}
	if r.Requested, err = parseNumeric(requested); err != nil {
		return list, err
	}
	if r.Actual, err = parseNumeric(actual); err != nil {
		return list, err
	}
	if r.Yield, err = parseNumeric(yieldValue); err != nil {
		return list, err
	}
	if err = json.Unmarshal(hashesJson, &r.TxHashes); err != nil {
		return list, err
	}

	list = append(list, r)
	return list, nil
}

func parseNumeric(text string) (sdkmath.Int, error) {
	value, ok := sdkmath.NewIntFromString(text)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("invalid numeric value %q", text)
	}
	return value, nil
}
