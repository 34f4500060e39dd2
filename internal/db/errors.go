package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
)

// Op constants map to Redis command names and SQL statements for error context.
const (
	OpDel           = "DEL"
	OpHDel          = "HDEL"
	OpHGetAll       = "HGETALL"
	OpHSet          = "HSET"
	OpExists        = "EXISTS"
	OpGet           = "GET"
	OpSet           = "SET"
	OpZAdd          = "ZADD"
	OpZRem          = "ZREM"
	OpZRange        = "ZRANGE"
	OpZRangeByScore = "ZRANGEBYSCORE"
	OpZCard         = "ZCARD"
	OpQuery         = "QUERY"
	OpExec          = "EXEC"
	OpMigrate       = "MIGRATE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
