package testutil

import (
	"fmt"
	"io/ioutil"
	"strings"
	"sync/atomic"
	"testing"

	"nutrimatch-go-worker/database"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var dbSeq int64

// DB opens a private in-memory sqlite database with every table migrated.
// A single connection keeps the memory database alive and serializes
// transactions the way row locks would on MySQL.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open("sqlite3", dsn)
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	db.DB().SetMaxOpenConns(1)
	db.LogMode(false)
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() { db.Close() })
	return db
}

// Logger returns an entry that discards output.
func Logger(tb testing.TB) *logrus.Entry {
	tb.Helper()
	logger := logrus.New()
	logger.Out = ioutil.Discard
	return logrus.NewEntry(logger).WithField("test", tb.Name())
}
