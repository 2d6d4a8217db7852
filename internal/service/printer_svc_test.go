package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bambufarm_v1_202608/internal/api/dto"
	"bambufarm_v1_202608/internal/model"
	"bambufarm_v1_202608/internal/printer"
	"bambufarm_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func setupPrinterService(t *testing.T) *PrinterService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Printer{}))

	return NewPrinterService(repository.NewPrinterRepository(db), nil, nil)
}

func createPrinter(t *testing.T, svc *PrinterService, serial string) *model.Printer {
	p, err := svc.Create(context.Background(), &dto.CreatePrinterRequest{
		Name:       "车间-" + serial,
		IP:         "10.0.0.5",
		AccessCode: "12345678",
		Serial:     serial,
		Model:      "X1C",
	})
	require.NoError(t, err)
	return p
}

// ==================== 登记管理 ====================

func TestPrinterServiceCRUD(t *testing.T) {
	svc := setupPrinterService(t)
	ctx := context.Background()

	p := createPrinter(t, svc, "01S00C123400001")

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Serial, got.Serial)

	updated, err := svc.Update(ctx, p.ID, &dto.UpdatePrinterRequest{
		Name: "改名",
		IP:   "10.0.0.9",
	})
	require.NoError(t, err)
	assert.Equal(t, "改名", updated.Name)
	assert.Equal(t, "10.0.0.9", updated.IP)
	// 未填字段保持原值
	assert.Equal(t, "12345678", updated.AccessCode)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrPrinterNotFound)
}

func TestPrinterServiceDuplicateSerial(t *testing.T) {
	svc := setupPrinterService(t)
	createPrinter(t, svc, "A1")

	_, err := svc.Create(context.Background(), &dto.CreatePrinterRequest{
		Name:       "重复",
		IP:         "10.0.0.6",
		AccessCode: "87654321",
		Serial:     "A1",
	})
	assert.ErrorIs(t, err, ErrSerialTaken)
}

func TestPrinterServiceNotFound(t *testing.T) {
	svc := setupPrinterService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrPrinterNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 999), ErrPrinterNotFound)
	_, err = svc.Update(ctx, 999, &dto.UpdatePrinterRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrPrinterNotFound)
}

// ==================== 连接缓存 ====================

func TestConnLockIsPerPrinter(t *testing.T) {
	svc := setupPrinterService(t)

	l1 := svc.connLock(1)
	l2 := svc.connLock(2)
	require.NotNil(t, l1)
	// 每台机器各自一把锁，同一台机器拿到同一把
	assert.NotSame(t, l1, l2)
	assert.Same(t, l1, svc.connLock(1))

	// 一台机器的锁被占用时，另一台不受影响
	l1.Lock()
	defer l1.Unlock()

	done := make(chan struct{})
	go func() {
		l2.Lock()
		l2.Unlock()
		close(done)
	}()
	<-done
}

func TestConnLockConcurrentAccess(t *testing.T) {
	svc := setupPrinterService(t)

	var wg sync.WaitGroup
	locks := make([]*sync.Mutex, 16)
	for i := range locks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			locks[i] = svc.connLock(7)
		}(i)
	}
	wg.Wait()

	for _, l := range locks {
		assert.Same(t, locks[0], l)
	}
}

func TestEvictWithoutInstanceIsNoop(t *testing.T) {
	svc := setupPrinterService(t)
	svc.evict(1)
	svc.Shutdown()
}

// ==================== 摄像头边界 ====================

func TestCameraFrameWithoutGrabber(t *testing.T) {
	svc := setupPrinterService(t)
	p := createPrinter(t, svc, "B1")

	_, err := svc.CameraFrame(context.Background(), p.ID)
	assert.ErrorIs(t, err, printer.ErrNotSupported)
}
