package cache

import (
	"fmt"
	"time"
)

const (
	ColumnsKeyPrefix = "columns:%s"

	ColumnsTTL = 10 * time.Minute
)

// ColumnsKey returns the cache key for a table's column catalog.
func ColumnsKey(table string) string {
	return fmt.Sprintf(ColumnsKeyPrefix, table)
}
