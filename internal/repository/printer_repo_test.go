package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bambufarm_v1_202608/internal/model"
)

// ==================== 测试辅助 ====================

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.SysUser{}, &model.Printer{}))
	return db
}

func newTestPrinter(serial string) *model.Printer {
	return &model.Printer{
		Name:       "车间-" + serial,
		IP:         "10.0.0.5",
		AccessCode: "12345678",
		Serial:     serial,
		Model:      "X1C",
	}
}

// ==================== PrinterRepository ====================

func TestPrinterRepoCreateAndGet(t *testing.T) {
	repo := NewPrinterRepository(setupTestDB(t))
	ctx := context.Background()

	p := newTestPrinter("01S00C123400001")
	require.NoError(t, repo.Create(ctx, p))
	require.NotZero(t, p.ID)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.Serial, got.Serial)
	assert.Equal(t, p.AccessCode, got.AccessCode)

	bySerial, err := repo.GetBySerial(ctx, p.Serial)
	require.NoError(t, err)
	require.NotNil(t, bySerial)
	assert.Equal(t, p.ID, bySerial.ID)
}

func TestPrinterRepoNotFoundIsNilNil(t *testing.T) {
	repo := NewPrinterRepository(setupTestDB(t))
	ctx := context.Background()

	got, err := repo.GetByID(ctx, 999)
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetBySerial(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestPrinterRepoList(t *testing.T) {
	repo := NewPrinterRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestPrinter("A1")))
	require.NoError(t, repo.Create(ctx, newTestPrinter("A2")))

	printers, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, printers, 2)
	assert.Equal(t, "A1", printers[0].Serial)
	assert.Equal(t, "A2", printers[1].Serial)
}

func TestPrinterRepoUpdateLastReport(t *testing.T) {
	repo := NewPrinterRepository(setupTestDB(t))
	ctx := context.Background()

	p := newTestPrinter("B1")
	require.NoError(t, repo.Create(ctx, p))

	raw := []byte(`{"print":{"gcode_state":"RUNNING"}}`)
	require.NoError(t, repo.UpdateLastReport(ctx, p.ID, raw))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(got.LastReport))
	assert.False(t, got.LastSeenAt.IsZero())
}

func TestPrinterRepoDeleteAndExists(t *testing.T) {
	repo := NewPrinterRepository(setupTestDB(t))
	ctx := context.Background()

	p := newTestPrinter("C1")
	require.NoError(t, repo.Create(ctx, p))

	exists, err := repo.ExistsBySerial(ctx, "C1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, p.ID))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
