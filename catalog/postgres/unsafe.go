package postgres

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/data/errors"
)

// This file contains internal "unsafe" methods that perform operations without acquiring locks.
// These methods MUST only be called when the caller already holds the appropriate lock.

const nodeColumns = "n.id, n.path, n.type, n.size, n.create_time, n.modify_time, n.replicas"

func (ps *PostgresStore) createNodeUnsafe(ctx context.Context, node *data.Node) error {
	replicas, err := marshalReplicas(node.Replicas)
	if err != nil {
		return err
	}

	tx, err := ps.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO vcat_nodes (id, path, parent, name, type, size, create_time, modify_time, replicas)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (path) DO NOTHING
	`, node.ID, node.Path, parentOf(node.Path), node.Name(), int(node.Type), node.Size,
		node.CreateTime.UnixNano(), node.ModifyTime.UnixNano(), replicas)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.Exist(nil, node.Path)
	}

	for _, avu := range node.Metadata {
		if _, err := tx.Exec(ctx, `
			INSERT INTO vcat_avus (node_id, attribute, value, unit) VALUES ($1, $2, $3, $4)
		`, node.ID, avu.Attribute, avu.Value, avu.Unit); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (ps *PostgresStore) readNodeUnsafe(ctx context.Context, path string) (*data.Node, error) {
	row := ps.pool.QueryRow(ctx, "SELECT "+nodeColumns+" FROM vcat_nodes n WHERE n.path = $1", path)
	node, err := scanNode(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotExist(nil, path)
		}
		return nil, err
	}

	if err := ps.loadMetaUnsafe(ctx, []*data.Node{node}); err != nil {
		return nil, err
	}
	return node, nil
}

// renameNodeUnsafe rewrites the path prefix of the node and all its descendants.
func (ps *PostgresStore) renameNodeUnsafe(ctx context.Context, src, dst string) error {
	tx, err := ps.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM vcat_nodes WHERE path = $1)", dst).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return errors.Exist(nil, dst)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE vcat_nodes SET path = $1, parent = $2, name = $3 WHERE path = $4
	`, dst, parentOf(dst), data.Base(dst), src)
	if err := expectAffected(tag, err, src); err != nil {
		return err
	}

	// substr() is 1-based and counts characters
	offset := utf8.RuneCountInString(src) + 1
	_, err = tx.Exec(ctx, `
		UPDATE vcat_nodes SET path = $1 || substr(path, $2), parent = $1 || substr(parent, $2)
		WHERE path LIKE $3 ESCAPE '\'
	`, dst, offset, data.EscapeLike(src)+"/%")
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (ps *PostgresStore) queryNodesUnsafe(ctx context.Context, query *catalog.Query) (*catalog.QueryResult, error) {
	builder := &catalog.SQLBuilder{Bind: catalog.DollarN, Collate: "C"}
	where := builder.Where(query, "n", "vcat_avus")

	var total int
	if err := ps.pool.QueryRow(ctx, "SELECT COUNT(1) FROM vcat_nodes n WHERE "+where, builder.Args...).Scan(&total); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + nodeColumns + " FROM vcat_nodes n WHERE ")
	sb.WriteString(where)
	sb.WriteString(" ORDER BY ")
	sb.WriteString(builder.OrderBy(query, "n"))

	args := builder.Args
	if query.Limit > 0 {
		sb.WriteString(" LIMIT " + strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		sb.WriteString(" OFFSET " + strconv.Itoa(query.Offset))
	}

	rows, err := ps.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]*data.Node, 0)
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, node)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := ps.loadMetaUnsafe(ctx, candidates); err != nil {
		return nil, err
	}

	return &catalog.QueryResult{
		Candidates: candidates,
		TotalCount: total,
		Paginating: max(query.Offset, 0)+len(candidates) < total,
	}, nil
}

// loadMetaUnsafe attaches the metadata triples to the nodes.
func (ps *PostgresStore) loadMetaUnsafe(ctx context.Context, nodes []*data.Node) error {
	if len(nodes) == 0 {
		return nil
	}

	ids := make([]string, 0, len(nodes))
	byID := make(map[string]*data.Node, len(nodes))
	for _, node := range nodes {
		ids = append(ids, node.ID)
		byID[node.ID] = node
	}

	rows, err := ps.pool.Query(ctx, `
		SELECT node_id, attribute, value, unit FROM vcat_avus
		WHERE node_id = ANY($1) ORDER BY seq
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var avu data.AVU
		if err := rows.Scan(&id, &avu.Attribute, &avu.Value, &avu.Unit); err != nil {
			return err
		}
		if node, ok := byID[id]; ok {
			node.Metadata = append(node.Metadata, avu)
		}
	}
	return rows.Err()
}

func scanNode(row pgx.Row) (*data.Node, error) {
	var node data.Node
	var nodeType int
	var createTime, modifyTime int64
	var replicas *string

	if err := row.Scan(&node.ID, &node.Path, &nodeType, &node.Size, &createTime, &modifyTime, &replicas); err != nil {
		return nil, err
	}

	node.Type = data.NodeType(nodeType)
	node.CreateTime = time.Unix(0, createTime)
	node.ModifyTime = time.Unix(0, modifyTime)

	if replicas != nil && *replicas != "" {
		if err := json.Unmarshal([]byte(*replicas), &node.Replicas); err != nil {
			return nil, err
		}
	}
	return &node, nil
}

func marshalReplicas(replicas []data.Replica) (*string, error) {
	if len(replicas) == 0 {
		return nil, nil
	}

	bytes, err := json.Marshal(replicas)
	if err != nil {
		return nil, err
	}
	value := string(bytes)
	return &value, nil
}

// parentOf returns the parent column value; the root has none.
func parentOf(path string) string {
	if path == "/" {
		return ""
	}
	return data.Dir(path)
}
