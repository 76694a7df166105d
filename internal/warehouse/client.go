// Package warehouse implements the remote query executor over Arrow Flight.
// It is the external collaborator of the cache: authentication, transport,
// and timeouts all live here, behind the cache.Executor contract.
package warehouse

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/apache/arrow/go/v13/arrow/flight"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/sqlstash/sqlstash/internal/table"
)

// Config holds the endpoint and credentials for one warehouse.
type Config struct {
	Host   string
	Port   int
	UseTLS bool
	User   string
	Token  string
}

// Address returns the gRPC dial target.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Client executes queries against an Arrow Flight endpoint. A fresh
// connection is dialed per query; the cache in front of it makes connection
// reuse irrelevant for the expected call rates.
type Client struct {
	cfg    Config
	logger zerolog.Logger
}

// NewClient validates the config and returns a query executor.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.Host == "" {
		return nil, errors.New("warehouse host is not configured")
	}
	return &Client{cfg: cfg, logger: logger}, nil
}

// Execute runs the query and returns the full result table. Any transport,
// auth, or query error is returned wrapped; callers treat it as opaque.
// Cancellation and deadlines come from ctx.
func (c *Client) Execute(ctx context.Context, query string) (*table.Table, error) {
	creds := insecure.NewCredentials()
	if c.cfg.UseTLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	client, err := flight.NewClientWithMiddleware(c.cfg.Address(), nil, nil,
		grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("connect to warehouse %s: %w", c.cfg.Address(), err)
	}
	defer client.Close()

	ctx, err = client.AuthenticateBasicToken(ctx, c.cfg.User, c.cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("authenticate with warehouse: %w", err)
	}
	c.logger.Debug().Str("addr", c.cfg.Address()).Msg("authenticated with warehouse")

	desc := &flight.FlightDescriptor{
		Type: flight.DescriptorCMD,
		Cmd:  []byte(query),
	}
	info, err := client.GetFlightInfo(ctx, desc)
	if err != nil {
		return nil, fmt.Errorf("plan query: %w", err)
	}
	if len(info.Endpoint) == 0 {
		return nil, errors.New("warehouse returned no result endpoints")
	}

	stream, err := client.DoGet(ctx, info.Endpoint[0].Ticket)
	if err != nil {
		return nil, fmt.Errorf("fetch query result: %w", err)
	}

	rdr, err := flight.NewRecordReader(stream)
	if err != nil {
		return nil, fmt.Errorf("read result stream: %w", err)
	}
	defer rdr.Release()

	columns, err := table.ColumnsFromSchema(rdr.Schema())
	if err != nil {
		return nil, fmt.Errorf("map result schema: %w", err)
	}

	tbl := table.New(columns)
	for rdr.Next() {
		if err := tbl.AppendRecord(rdr.Record()); err != nil {
			return nil, fmt.Errorf("convert result batch: %w", err)
		}
	}
	if err := rdr.Err(); err != nil {
		return nil, fmt.Errorf("read result stream: %w", err)
	}

	c.logger.Debug().Int("rows", tbl.NumRows()).Msg("query returned")
	return tbl, nil
}
