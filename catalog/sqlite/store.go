package sqlite

import (
	"context"
	"database/sql"
	"sync"

	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/data/errors"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore keeps the catalog index in two SQLite tables:
// vcat_nodes holds one row per collection or data object (replicas as JSON),
// vcat_avus holds the metadata triples, so that queries can filter on them
// with a single EXISTS subquery.
type SQLiteStore struct {
	mu  sync.RWMutex
	db  *sql.DB
	dsn string
}

func init() {
	catalog.RegisterStore("sqlite", func(config map[string]string) (catalog.Store, error) {
		path := config["path"]
		if path == "" {
			path = ":memory:"
		}
		return NewSQLiteStore(path), nil
	})
}

// NewSQLiteStore creates a new SQLite-backed store.
// The dsn can be ":memory:" for an in-memory database or a file path.
func NewSQLiteStore(dsn string) *SQLiteStore {
	return &SQLiteStore{
		dsn: dsn,
	}
}

// Returns the identifier name defined for this store
func (*SQLiteStore) Name() string {
	return "sqlite"
}

// Open is part of the lifecycle behaviour and gets called when opening this store.
func (ss *SQLiteStore) Open(ctx context.Context) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", ss.dsn)
	if err != nil {
		return err
	}

	// A single connection keeps ":memory:" databases and connection pragmas stable
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA case_sensitive_like = ON",
		"PRAGMA journal_mode = WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return errors.Errorf("failed to apply '%s': %w", pragma, err)
		}
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return err
	}

	ss.db = db
	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this store.
func (ss *SQLiteStore) Close(ctx context.Context) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.db == nil {
		return nil
	}

	err := ss.db.Close()
	ss.db = nil
	return err
}

// GetCapabilities returns a list of capabilities supported by this store.
func (ss *SQLiteStore) GetCapabilities() *catalog.BackendCapabilities {
	capabilities := []catalog.BackendCapability{
		catalog.CapabilityIndex,
		catalog.CapabilityQueryPushdown,
		catalog.CapabilityTransactions,
	}
	if ss.dsn != ":memory:" {
		capabilities = append(capabilities, catalog.CapabilityPersistent)
	}

	return &catalog.BackendCapabilities{
		Capabilities: capabilities,
	}
}

// initSchema creates the database schema.
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS vcat_nodes (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		parent TEXT NOT NULL,
		name TEXT NOT NULL,
		type INTEGER NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		create_time INTEGER NOT NULL,
		modify_time INTEGER NOT NULL,
		replicas TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_vcat_nodes_parent ON vcat_nodes(parent);

	CREATE TABLE IF NOT EXISTS vcat_avus (
		node_id TEXT NOT NULL REFERENCES vcat_nodes(id) ON DELETE CASCADE,
		attribute TEXT NOT NULL,
		value TEXT NOT NULL,
		unit TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_vcat_avus_node ON vcat_avus(node_id);
	CREATE INDEX IF NOT EXISTS idx_vcat_avus_attribute ON vcat_avus(attribute);
	`

	_, err := db.ExecContext(ctx, schema)
	return err
}

func (ss *SQLiteStore) CreateNode(ctx context.Context, node *data.Node) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.db == nil {
		return data.ErrClosed
	}
	return ss.createNodeUnsafe(ctx, node)
}

func (ss *SQLiteStore) ReadNode(ctx context.Context, path string) (*data.Node, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	if ss.db == nil {
		return nil, data.ErrClosed
	}
	return ss.readNodeUnsafe(ctx, path)
}

func (ss *SQLiteStore) ExistsNode(ctx context.Context, path string) (bool, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	if ss.db == nil {
		return false, data.ErrClosed
	}

	var count int
	err := ss.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM vcat_nodes WHERE path = ?", path).Scan(&count)
	return count > 0, err
}

func (ss *SQLiteStore) UpdateNode(ctx context.Context, node *data.Node) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.db == nil {
		return data.ErrClosed
	}

	replicas, err := marshalReplicas(node.Replicas)
	if err != nil {
		return err
	}

	result, err := ss.db.ExecContext(ctx, `
		UPDATE vcat_nodes SET size = ?, modify_time = ?, replicas = ? WHERE path = ?
	`, node.Size, node.ModifyTime.UnixNano(), replicas, node.Path)
	if err != nil {
		return err
	}
	return expectAffected(result, node.Path)
}

func (ss *SQLiteStore) DeleteNode(ctx context.Context, path string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.db == nil {
		return data.ErrClosed
	}

	result, err := ss.db.ExecContext(ctx, "DELETE FROM vcat_nodes WHERE path = ?", path)
	if err != nil {
		return err
	}
	return expectAffected(result, path)
}

func (ss *SQLiteStore) RenameNode(ctx context.Context, src, dst string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.db == nil {
		return data.ErrClosed
	}
	return ss.renameNodeUnsafe(ctx, src, dst)
}

func (ss *SQLiteStore) AddMeta(ctx context.Context, path string, avu data.AVU) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.db == nil {
		return data.ErrClosed
	}

	id, err := ss.nodeIDUnsafe(ctx, path)
	if err != nil {
		return err
	}

	_, err = ss.db.ExecContext(ctx, `
		INSERT INTO vcat_avus (node_id, attribute, value, unit) VALUES (?, ?, ?, ?)
	`, id, avu.Attribute, avu.Value, avu.Unit)
	return err
}

func (ss *SQLiteStore) RemoveMeta(ctx context.Context, path string, avu data.AVU) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.db == nil {
		return data.ErrClosed
	}

	id, err := ss.nodeIDUnsafe(ctx, path)
	if err != nil {
		return err
	}

	result, err := ss.db.ExecContext(ctx, `
		DELETE FROM vcat_avus WHERE node_id = ? AND attribute = ? AND value = ? AND unit = ?
	`, id, avu.Attribute, avu.Value, avu.Unit)
	if err != nil {
		return err
	}
	return expectAffected(result, path+" "+avu.String())
}

func (ss *SQLiteStore) QueryNodes(ctx context.Context, query *catalog.Query) (*catalog.QueryResult, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	if ss.db == nil {
		return nil, data.ErrClosed
	}
	return ss.queryNodesUnsafe(ctx, query)
}

func expectAffected(result sql.Result, path string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.NotExist(nil, path)
	}
	return nil
}
