package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeCustomerImport is the task type for batch customer imports.
	TaskTypeCustomerImport = "customers:import"
)

// CustomerImportRow is one pre-parsed row of an import. Spreadsheet parsing
// happens upstream; the worker only receives clean fields.
type CustomerImportRow struct {
	Name           string  `json:"name"`
	ShortName      string  `json:"shortName,omitempty"`
	PotentialLevel int     `json:"potentialLevel"`
	Phone          *string `json:"phone,omitempty"`
	Email          *string `json:"email,omitempty"`
	Address        *string `json:"address,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// CustomerImportPayload describes one batch customer import.
type CustomerImportPayload struct {
	Rows      []CustomerImportRow `json:"rows"`
	CreatedBy string              `json:"createdBy"`
}

// NewCustomerImportTask constructs an Asynq task.
func NewCustomerImportTask(payload CustomerImportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeCustomerImport, data), nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	return &Client{client: asynq.NewClient(redisOpts)}, nil
}

// EnqueueCustomerImport enqueues a batch customer import.
func (c *Client) EnqueueCustomerImport(ctx context.Context, payload CustomerImportPayload) (*asynq.TaskInfo, error) {
	task, err := NewCustomerImportTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
