package migration

import (
	"github.com/colexalia/colexalia-backend/internal/domain"
	"gorm.io/gorm"
)

// models lists every managed table, parents first
func models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.WishlistItem{},
		&domain.CollectionItem{},
	}
}

// Run executes AutoMigrate for every table. Existing tables are altered, never dropped.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(models()...)
}

// TableCount is the row count of one managed table
type TableCount struct {
	Table  string
	Exists bool
	Rows   int64
}

// Counts reports the row count of every managed table
func Counts(db *gorm.DB) ([]TableCount, error) {
	var counts []TableCount
	for _, m := range models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		tc := TableCount{Table: stmt.Schema.Table}
		if db.Migrator().HasTable(m) {
			tc.Exists = true
			if err := db.Model(m).Count(&tc.Rows).Error; err != nil {
				return nil, err
			}
		}
		counts = append(counts, tc)
	}
	return counts, nil
}

// Reset drops every managed table, children first
func Reset(db *gorm.DB) error {
	ms := models()
	for i := len(ms) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(ms[i]); err != nil {
			return err
		}
	}
	return nil
}
