package notification

import "context"

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	// ListByUser returns the user's notifications newest first. A limit of 0
	// returns all of them.
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Notification, int, error)
	List(ctx context.Context, limit, offset int) ([]*Notification, int, error)
}
