package contentindex

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/rushigund/Techligenc-website-backend/internal/config"
	"github.com/rushigund/Techligenc-website-backend/internal/queue"
)

// Open returns the index backend selected by cfg.IndexBackend and a func
// releasing it. publisher is only used by the amqp backend.
func Open(cfg config.Config, db *sql.DB, publisher queue.Publisher) (Index, func() error, error) {
	noop := func() error { return nil }
	switch cfg.IndexBackend {
	case config.IndexBackendPostgres:
		return NewPostgres(db), noop, nil
	case config.IndexBackendSQLite:
		idx, err := OpenSQLite(cfg.IndexSQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return idx, idx.Close, nil
	case config.IndexBackendAMQP:
		if publisher == nil {
			return nil, noop, errors.New("amqp index backend needs a broker connection")
		}
		return NewQueue(publisher, cfg.IndexQueue), noop, nil
	default:
		return nil, noop, errors.Errorf("unknown index backend %q", cfg.IndexBackend)
	}
}
