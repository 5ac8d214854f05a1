package common

import "context"

// Database is the storage abstraction the repositories run on. GORM and Bun both
// implement it through the adapters in common/adapters/database.
type Database interface {
	NewSelect() SelectQuery
	NewInsert() InsertQuery
	NewUpdate() UpdateQuery
	NewDelete() DeleteQuery

	RunInTransaction(ctx context.Context, fn func(Database) error) error
}

// SelectQuery builds a read against a single model table.
// Where clauses use "?" placeholders and are AND-ed together.
type SelectQuery interface {
	Model(model interface{}) SelectQuery
	Where(query string, args ...interface{}) SelectQuery
	Order(order string) SelectQuery
	Limit(n int) SelectQuery
	Offset(n int) SelectQuery

	Scan(ctx context.Context, dest interface{}) error
	Count(ctx context.Context) (int, error)
	Exists(ctx context.Context) (bool, error)
}

// InsertQuery inserts the model and writes generated keys back into it.
type InsertQuery interface {
	Model(model interface{}) InsertQuery
	Exec(ctx context.Context) (Result, error)
}

// UpdateQuery writes every column of the model, zero values included.
type UpdateQuery interface {
	Model(model interface{}) UpdateQuery
	Where(query string, args ...interface{}) UpdateQuery
	Exec(ctx context.Context) (Result, error)
}

type DeleteQuery interface {
	Model(model interface{}) DeleteQuery
	Where(query string, args ...interface{}) DeleteQuery
	Exec(ctx context.Context) (Result, error)
}

type Result interface {
	RowsAffected() int64
}

// Request is the router-agnostic view of an incoming HTTP request.
type Request interface {
	Context() context.Context
	Method() string
	URL() string
	Body() ([]byte, error)
	PathParam(key string) string
	QueryValues() map[string][]string
}

// ResponseWriter is the router-agnostic view of the outgoing response.
type ResponseWriter interface {
	SetHeader(key, value string)
	WriteHeader(statusCode int)
	Write(data []byte) (int, error)
	WriteJSON(data interface{}) error
}

// TableNameProvider lets a model override the table name used for queries.
type TableNameProvider interface {
	TableName() string
}
