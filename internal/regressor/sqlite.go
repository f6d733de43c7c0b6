package regressor

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite container layout:
//
//	metadata (name TEXT, value TEXT)   -- must hold n_features
//	nodes    (tree INTEGER, node INTEGER, left_child INTEGER, right_child INTEGER,
//	          feature INTEGER, threshold REAL, value REAL)
//
// Node ids start at 0 and are contiguous within each tree.

// LoadSQLite reads a forest from a read-only SQLite container
func LoadSQLite(path string) (*Forest, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var count int
	err = db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type IN ('table','view') AND name IN ('metadata','nodes')").Scan(&count)
	if err != nil {
		return nil, err
	}
	if count != 2 {
		return nil, fmt.Errorf("not a model container: metadata and nodes tables required")
	}

	var nFeatures string
	if err := db.QueryRow("SELECT value FROM metadata WHERE name = 'n_features'").Scan(&nFeatures); err != nil {
		return nil, fmt.Errorf("read n_features: %w", err)
	}
	f := &Forest{}
	if f.NFeatures, err = strconv.Atoi(nFeatures); err != nil {
		return nil, fmt.Errorf("parse n_features %q: %w", nFeatures, err)
	}

	rows, err := db.Query(`SELECT tree, node, left_child, right_child, feature, threshold, value
		FROM nodes ORDER BY tree, node`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			treeID, node, left, right, feature int
			threshold, value                   float64
		)
		if err := rows.Scan(&treeID, &node, &left, &right, &feature, &threshold, &value); err != nil {
			return nil, err
		}

		if treeID == len(f.Trees) {
			f.Trees = append(f.Trees, Tree{})
		}
		if treeID != len(f.Trees)-1 {
			return nil, fmt.Errorf("tree ids must be contiguous from 0, got %d", treeID)
		}
		t := &f.Trees[treeID]
		if node != len(t.Value) {
			return nil, fmt.Errorf("tree %d: node ids must be contiguous from 0, got %d", treeID, node)
		}

		t.ChildrenLeft = append(t.ChildrenLeft, left)
		t.ChildrenRight = append(t.ChildrenRight, right)
		t.Feature = append(t.Feature, feature)
		t.Threshold = append(t.Threshold, threshold)
		t.Value = append(t.Value, value)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return f, nil
}
