package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsForeignKeyErr(t *testing.T) {
	assert.True(t, IsForeignKeyErr(gorm.ErrForeignKeyViolated))
	assert.True(t, IsForeignKeyErr(fmt.Errorf("delete: %w", gorm.ErrForeignKeyViolated)))
	assert.True(t, IsForeignKeyErr(errors.New("constraint failed: FOREIGN KEY constraint failed (787)")))
	assert.True(t, IsForeignKeyErr(errors.New(`ERROR: update or delete on table "products" violates foreign key constraint`)))
	assert.False(t, IsForeignKeyErr(errors.New("UNIQUE constraint failed: products.slug")))
	assert.False(t, IsForeignKeyErr(nil))
}

func TestIsDuplicateKeyErr(t *testing.T) {
	assert.True(t, IsDuplicateKeyErr(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKeyErr(errors.New("UNIQUE constraint failed: users.username")))
	assert.False(t, IsDuplicateKeyErr(errors.New("FOREIGN KEY constraint failed")))
}

func TestNewTestEnforcesForeignKeys(t *testing.T) {
	conn, err := NewTest()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	conn.Exec(`CREATE TABLE parents (id INTEGER PRIMARY KEY)`)
	conn.Exec(`CREATE TABLE children (id INTEGER PRIMARY KEY, parent_id INTEGER NOT NULL REFERENCES parents(id) ON DELETE RESTRICT)`)
	conn.Exec(`INSERT INTO parents (id) VALUES (1)`)
	conn.Exec(`INSERT INTO children (id, parent_id) VALUES (1, 1)`)

	err = conn.Exec(`DELETE FROM parents WHERE id = 1`).Error
	assert.True(t, IsForeignKeyErr(err), "got %v", err)
}
