package listing

import (
	"context"

	"github.com/google/uuid"

	"github.com/abelbrown/userdesk/internal/journal"
	"github.com/abelbrown/userdesk/internal/user"
)

// Collection is the remote store of users. Implementations classify
// failures as *NetworkError or *ServerError and must be safe for
// concurrent use: the controller may have several calls outstanding.
type Collection interface {
	ListUsers(ctx context.Context, filter Filter, page PageRequest) (ResultPage, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	UpdateUser(ctx context.Context, id uuid.UUID, fields user.Fields) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// Journal records mutation outcomes. Called off the event loop.
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
}
