package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mwantia/vcat/catalog"
	"github.com/mwantia/vcat/data"
	"github.com/mwantia/vcat/data/errors"
)

// This file contains internal "unsafe" methods that perform operations without acquiring locks.
// These methods MUST only be called when the caller already holds the appropriate lock.

const nodeColumns = "id, path, type, size, create_time, modify_time, replicas"

type scanner interface {
	Scan(dest ...any) error
}

func (ss *SQLiteStore) createNodeUnsafe(ctx context.Context, node *data.Node) error {
	replicas, err := marshalReplicas(node.Replicas)
	if err != nil {
		return err
	}

	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM vcat_nodes WHERE path = ?", node.Path).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return errors.Exist(nil, node.Path)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vcat_nodes (id, path, parent, name, type, size, create_time, modify_time, replicas)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, node.ID, node.Path, parentOf(node.Path), node.Name(), int(node.Type), node.Size,
		node.CreateTime.UnixNano(), node.ModifyTime.UnixNano(), replicas)
	if err != nil {
		return err
	}

	for _, avu := range node.Metadata {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO vcat_avus (node_id, attribute, value, unit) VALUES (?, ?, ?, ?)
		`, node.ID, avu.Attribute, avu.Value, avu.Unit); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (ss *SQLiteStore) readNodeUnsafe(ctx context.Context, path string) (*data.Node, error) {
	row := ss.db.QueryRowContext(ctx, "SELECT "+nodeColumns+" FROM vcat_nodes WHERE path = ?", path)
	node, err := scanNode(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotExist(nil, path)
		}
		return nil, err
	}

	if err := ss.loadMetaUnsafe(ctx, []*data.Node{node}); err != nil {
		return nil, err
	}
	return node, nil
}

func (ss *SQLiteStore) nodeIDUnsafe(ctx context.Context, path string) (string, error) {
	var id string
	err := ss.db.QueryRowContext(ctx, "SELECT id FROM vcat_nodes WHERE path = ?", path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.NotExist(nil, path)
	}
	return id, err
}

// renameNodeUnsafe rewrites the path prefix of the node and all its descendants.
func (ss *SQLiteStore) renameNodeUnsafe(ctx context.Context, src, dst string) error {
	tx, err := ss.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM vcat_nodes WHERE path = ?", dst).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return errors.Exist(nil, dst)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE vcat_nodes SET path = ?, parent = ?, name = ? WHERE path = ?
	`, dst, parentOf(dst), data.Base(dst), src)
	if err != nil {
		return err
	}
	if err := expectAffected(result, src); err != nil {
		return err
	}

	// substr() is 1-based and counts characters
	offset := utf8.RuneCountInString(src) + 1
	_, err = tx.ExecContext(ctx, `
		UPDATE vcat_nodes SET path = ? || substr(path, ?), parent = ? || substr(parent, ?)
		WHERE path LIKE ? ESCAPE '\'
	`, dst, offset, dst, offset, data.EscapeLike(src)+"/%")
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (ss *SQLiteStore) queryNodesUnsafe(ctx context.Context, query *catalog.Query) (*catalog.QueryResult, error) {
	builder := &catalog.SQLBuilder{Bind: catalog.QuestionMark}
	where := builder.Where(query, "n", "vcat_avus")

	var total int
	if err := ss.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM vcat_nodes n WHERE "+where, builder.Args...).Scan(&total); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT n.")
	sb.WriteString(strings.ReplaceAll(nodeColumns, ", ", ", n."))
	sb.WriteString(" FROM vcat_nodes n WHERE ")
	sb.WriteString(where)
	sb.WriteString(" ORDER BY ")
	sb.WriteString(builder.OrderBy(query, "n"))

	args := builder.Args
	if query.Limit > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, query.Limit, max(query.Offset, 0))
	} else if query.Offset > 0 {
		sb.WriteString(" LIMIT -1 OFFSET ?")
		args = append(args, query.Offset)
	}

	rows, err := ss.db.QueryContext(ctx, sb.String(), args...)
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

	if err := ss.loadMetaUnsafe(ctx, candidates); err != nil {
		return nil, err
	}

	return &catalog.QueryResult{
		Candidates: candidates,
		TotalCount: total,
		Paginating: max(query.Offset, 0)+len(candidates) < total,
	}, nil
}

// loadMetaUnsafe attaches the metadata triples to the nodes in batches.
func (ss *SQLiteStore) loadMetaUnsafe(ctx context.Context, nodes []*data.Node) error {
	const batchSize = 500

	byID := make(map[string]*data.Node, len(nodes))
	for _, node := range nodes {
		byID[node.ID] = node
	}

	for start := 0; start < len(nodes); start += batchSize {
		batch := nodes[start:min(start+batchSize, len(nodes))]

		args := make([]any, 0, len(batch))
		for _, node := range batch {
			args = append(args, node.ID)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(batch)), ", ")

		rows, err := ss.db.QueryContext(ctx, `
			SELECT node_id, attribute, value, unit FROM vcat_avus
			WHERE node_id IN (`+placeholders+`) ORDER BY rowid
		`, args...)
		if err != nil {
			return err
		}

		for rows.Next() {
			var id string
			var avu data.AVU
			if err := rows.Scan(&id, &avu.Attribute, &avu.Value, &avu.Unit); err != nil {
				rows.Close()
				return err
			}
			if node, ok := byID[id]; ok {
				node.Metadata = append(node.Metadata, avu)
			}
		}

		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

func scanNode(row scanner) (*data.Node, error) {
	var node data.Node
	var nodeType int
	var createTime, modifyTime int64
	var replicas sql.NullString

	if err := row.Scan(&node.ID, &node.Path, &nodeType, &node.Size, &createTime, &modifyTime, &replicas); err != nil {
		return nil, err
	}

	node.Type = data.NodeType(nodeType)
	node.CreateTime = time.Unix(0, createTime)
	node.ModifyTime = time.Unix(0, modifyTime)

	if replicas.Valid && replicas.String != "" {
		if err := json.Unmarshal([]byte(replicas.String), &node.Replicas); err != nil {
			return nil, err
		}
	}
	return &node, nil
}

func marshalReplicas(replicas []data.Replica) (sql.NullString, error) {
	if len(replicas) == 0 {
		return sql.NullString{}, nil
	}

	bytes, err := json.Marshal(replicas)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(bytes), Valid: true}, nil
}

// parentOf returns the parent column value; the root has none.
func parentOf(path string) string {
	if path == "/" {
		return ""
	}
	return data.Dir(path)
}
