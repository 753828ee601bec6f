package store

import (
	"context"
	"fmt"

	"todoapi/app/models"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	cypherSelectAll  = "MATCH (t:TodoItem) RETURN t.id AS id, t.title AS title, t.description AS description ORDER BY t.id"
	cypherSelectByID = "MATCH (t:TodoItem {id: $id}) RETURN t.id AS id, t.title AS title, t.description AS description"
	cypherNextID     = "MERGE (s:Sequence {name: 'todo_items'}) " +
		"ON CREATE SET s.value = 0 " +
		"SET s.value = s.value + 1 " +
		"RETURN s.value AS id"
	cypherCreate = "CREATE (t:TodoItem {id: $id, title: $title, description: $description})"
	cypherUpdate = "MATCH (t:TodoItem {id: $id}) " +
		"SET t.title = $title, t.description = $description " +
		"RETURN count(t) AS matched"
	cypherDelete = "MATCH (t:TodoItem {id: $id}) " +
		"WITH t, count(t) AS matched " +
		"DETACH DELETE t " +
		"RETURN matched"
)

// neo4jConstraints run one per transaction on Migrate. The Sequence
// constraint keeps concurrent first MERGEs from creating two counters.
var neo4jConstraints = []string{
	"CREATE CONSTRAINT todo_item_id IF NOT EXISTS FOR (t:TodoItem) REQUIRE t.id IS UNIQUE",
	"CREATE CONSTRAINT todo_sequence_name IF NOT EXISTS FOR (s:Sequence) REQUIRE s.name IS UNIQUE",
}

// cypherRunner is the part of neo4j.ManagedTransaction the store uses.
type cypherRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (neo4j.ResultWithContext, error)
}

type transactionWork func(tx cypherRunner) (any, error)

// transactor runs work inside a managed read or write transaction. Write
// work may be retried, so it must not leak state between attempts.
type transactor interface {
	executeRead(ctx context.Context, work transactionWork) (any, error)
	executeWrite(ctx context.Context, work transactionWork) (any, error)
}

// sessionTransactor opens one driver session per call.
type sessionTransactor struct {
	driver   neo4j.DriverWithContext
	database string
}

func (t sessionTransactor) execute(ctx context.Context, mode neo4j.AccessMode, work transactionWork) (any, error) {
	session := t.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: t.database})
	defer session.Close(ctx)

	fn := func(tx neo4j.ManagedTransaction) (any, error) {
		return work(tx)
	}
	if mode == neo4j.AccessModeRead {
		return session.ExecuteRead(ctx, fn)
	}
	return session.ExecuteWrite(ctx, fn)
}

func (t sessionTransactor) executeRead(ctx context.Context, work transactionWork) (any, error) {
	return t.execute(ctx, neo4j.AccessModeRead, work)
}

func (t sessionTransactor) executeWrite(ctx context.Context, work transactionWork) (any, error) {
	return t.execute(ctx, neo4j.AccessModeWrite, work)
}

// Neo4jStore keeps items as :TodoItem nodes. Integer ids come from a
// :Sequence counter node bumped inside the commit transaction.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	tx     transactor
}

// NewNeo4jStore wraps a driver. An empty database selects the server default.
func NewNeo4jStore(driver neo4j.DriverWithContext, database string) *Neo4jStore {
	return &Neo4jStore{
		driver: driver,
		tx:     sessionTransactor{driver: driver, database: database},
	}
}

// Migrate creates the uniqueness constraints on TodoItem.id and Sequence.name.
func (s *Neo4jStore) Migrate(ctx context.Context) error {
	for _, cypher := range neo4jConstraints {
		_, err := s.tx.executeWrite(ctx, func(tx cypherRunner) (any, error) {
			res, err := tx.Run(ctx, cypher, nil)
			if err != nil {
				return nil, err
			}
			return res.Consume(ctx)
		})
		if err != nil {
			return persistenceError("migrate", err)
		}
	}
	return nil
}

func (s *Neo4jStore) NewContext() Context {
	return &neo4jContext{store: s}
}

func (s *Neo4jStore) Ping(ctx context.Context) error {
	return persistenceError("ping", s.driver.VerifyConnectivity(ctx))
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	return persistenceError("close", s.driver.Close(ctx))
}

type neo4jContext struct {
	changeSet
	store *Neo4jStore
}

func recordToTodoItem(record *neo4j.Record) (models.TodoItem, error) {
	id, _, err := neo4j.GetRecordValue[int64](record, "id")
	if err != nil {
		return models.TodoItem{}, err
	}
	item := models.TodoItem{ID: id}

	if title, ok := record.Get("title"); ok && title != nil {
		s, ok := title.(string)
		if !ok {
			return models.TodoItem{}, fmt.Errorf("title of item %d is %T, not string", id, title)
		}
		item.Title = s
	}
	if description, ok := record.Get("description"); ok && description != nil {
		s, ok := description.(string)
		if !ok {
			return models.TodoItem{}, fmt.Errorf("description of item %d is %T, not string", id, description)
		}
		item.Description = models.StringPtr(s)
	}
	return item, nil
}

func todoItemParams(item *models.TodoItem) map[string]any {
	params := map[string]any{
		"id":          item.ID,
		"title":       item.Title,
		"description": nil,
	}
	if item.Description != nil {
		params["description"] = *item.Description
	}
	return params
}

func (c *neo4jContext) List(ctx context.Context) ([]models.TodoItem, error) {
	result, err := c.store.tx.executeRead(ctx, func(tx cypherRunner) (any, error) {
		res, err := tx.Run(ctx, cypherSelectAll, nil)
		if err != nil {
			return nil, err
		}
		items := make([]models.TodoItem, 0)
		for res.Next(ctx) {
			item, err := recordToTodoItem(res.Record())
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return items, nil
	})
	if err != nil {
		return nil, persistenceError("list", err)
	}
	return result.([]models.TodoItem), nil
}

func (c *neo4jContext) Find(ctx context.Context, id int64) (*models.TodoItem, error) {
	result, err := c.store.tx.executeRead(ctx, func(tx cypherRunner) (any, error) {
		res, err := tx.Run(ctx, cypherSelectByID, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			return nil, res.Err()
		}
		item, err := recordToTodoItem(res.Record())
		if err != nil {
			return nil, err
		}
		return &item, nil
	})
	if err != nil {
		return nil, persistenceError("find", err)
	}
	item, _ := result.(*models.TodoItem)
	return item, nil
}

func (c *neo4jContext) Commit(ctx context.Context) error {
	pending := c.take()
	if len(pending) == 0 {
		return nil
	}

	// The driver may retry the function, so ids are collected per attempt.
	var assigned map[*models.TodoItem]int64
	_, err := c.store.tx.executeWrite(ctx, func(tx cypherRunner) (any, error) {
		assigned = make(map[*models.TodoItem]int64)
		for _, ch := range pending {
			if err := applyNeo4j(ctx, tx, ch, assigned); err != nil {
				return nil, fmt.Errorf("%s item: %w", ch.kind, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return persistenceError("commit", err)
	}
	for item, id := range assigned {
		item.ID = id
	}
	return nil
}

func applyNeo4j(ctx context.Context, tx cypherRunner, ch change, assigned map[*models.TodoItem]int64) error {
	switch ch.kind {
	case changeAdd:
		res, err := tx.Run(ctx, cypherNextID, nil)
		if err != nil {
			return err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return err
		}
		id, _, err := neo4j.GetRecordValue[int64](record, "id")
		if err != nil {
			return err
		}
		params := todoItemParams(ch.item)
		params["id"] = id
		res, err = tx.Run(ctx, cypherCreate, params)
		if err != nil {
			return err
		}
		if _, err := res.Consume(ctx); err != nil {
			return err
		}
		assigned[ch.item] = id
		return nil
	case changeUpdate:
		return runMatched(ctx, tx, cypherUpdate, todoItemParams(ch.item))
	case changeRemove:
		return runMatched(ctx, tx, cypherDelete, map[string]any{"id": ch.item.ID})
	default:
		return fmt.Errorf("unknown change %d", ch.kind)
	}
}

// runMatched runs a statement returning a "matched" count and fails with
// ErrNotFound when nothing matched.
func runMatched(ctx context.Context, tx cypherRunner, cypher string, params map[string]any) error {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	if !res.Next(ctx) {
		if err := res.Err(); err != nil {
			return err
		}
		return ErrNotFound
	}
	matched, _, err := neo4j.GetRecordValue[int64](res.Record(), "matched")
	if err != nil {
		return err
	}
	if matched == 0 {
		return ErrNotFound
	}
	return nil
}
