package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/infowows/trg-crm-sub000/internal/crm/customers"
	"github.com/infowows/trg-crm-sub000/internal/crm/sequence"
)

// CustomerImporter inserts import rows with block-reserved customer ids: one
// counter round trip per distinct short name, in-memory increments for the
// rest of the batch.
type CustomerImporter struct {
	logger   *slog.Logger
	repo     customers.Repository
	counters sequence.Counters
}

// NewCustomerImporter constructs a CustomerImporter.
func NewCustomerImporter(logger *slog.Logger, repo customers.Repository, counters sequence.Counters) *CustomerImporter {
	return &CustomerImporter{logger: logger, repo: repo, counters: counters}
}

// RowError reports one failed row by its position in the batch.
type RowError struct {
	Index int    `json:"index"`
	Err   string `json:"error"`
}

// ImportResult summarizes one processed batch.
type ImportResult struct {
	Created int        `json:"created"`
	Failed  []RowError `json:"failed,omitempty"`
}

// Import runs one batch. Row failures never abort the batch; they are
// collected and reported together.
func (i *CustomerImporter) Import(ctx context.Context, payload CustomerImportPayload) (*ImportResult, error) {
	shortNames := make([]string, len(payload.Rows))
	counts := make(map[string]int64)
	result := &ImportResult{}

	for idx, row := range payload.Rows {
		shortName := strings.ToUpper(strings.TrimSpace(row.ShortName))
		if shortName == "" {
			shortName = customers.DeriveShortName(row.Name)
		}
		if shortName == "" {
			result.Failed = append(result.Failed, RowError{Index: idx, Err: "customer name yields an empty short name"})
			continue
		}
		shortNames[idx] = shortName
		counts[shortName]++
	}

	batch := sequence.NewBatch(i.counters, sequence.PrefixCustomer)
	for scope, n := range counts {
		if err := batch.ReserveScope(ctx, scope, n); err != nil {
			return nil, fmt.Errorf("reserve id block for %s: %w", scope, err)
		}
	}

	for idx, row := range payload.Rows {
		shortName := shortNames[idx]
		if shortName == "" {
			continue
		}
		seq, err := batch.Next(shortName)
		if err != nil {
			result.Failed = append(result.Failed, RowError{Index: idx, Err: err.Error()})
			continue
		}

		customer := customers.Customer{
			CustomerID:     sequence.FormatCustomerID(shortName, seq),
			Name:           strings.TrimSpace(row.Name),
			ShortName:      shortName,
			PotentialLevel: row.PotentialLevel,
			Phone:          row.Phone,
			Email:          row.Email,
			Address:        row.Address,
			Notes:          row.Notes,
			State:          customers.StateActive,
			CreatedBy:      payload.CreatedBy,
		}
		if _, err := i.repo.Create(ctx, customer); err != nil {
			result.Failed = append(result.Failed, RowError{Index: idx, Err: err.Error()})
			continue
		}
		result.Created++
	}

	i.logger.Info("customer import finished",
		slog.Int("rows", len(payload.Rows)),
		slog.Int("created", result.Created),
		slog.Int("failed", len(result.Failed)))
	return result, nil
}

// HandleTask processes TaskTypeCustomerImport tasks.
func (i *CustomerImporter) HandleTask(ctx context.Context, t *asynq.Task) error {
	var payload CustomerImportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	_, err := i.Import(ctx, payload)
	return err
}
