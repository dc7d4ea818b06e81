package admin

import (
	"context"

	"google.golang.org/grpc"
)

type Client struct {
	api AdminClient
}

func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{
		api: NewAdminClient(conn),
	}
}

func (c *Client) ListConnections(ctx context.Context) (*ListConnectionsOutput, error) {
	return c.api.ListConnections(ctx, &ListConnectionsInput{})
}

// ListJournal lists journal records, only those owned by owner if it is not empty.
func (c *Client) ListJournal(ctx context.Context, owner string) ([]*Record, error) {
	out, err := c.api.ListJournal(ctx, &ListJournalInput{Owner: owner})
	if err != nil {
		return nil, err
	}
	return out.Records, nil
}

func (c *Client) CloseConnection(ctx context.Context, id string) error {
	_, err := c.api.CloseConnection(ctx, &CloseConnectionInput{ID: id})
	return err
}
