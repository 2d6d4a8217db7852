package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bambufarm_v1_202608/internal/model"
)

// ==================== PrinterRepository 打印机仓库 ====================

// PrinterRepository 打印机仓库接口
type PrinterRepository interface {
	Create(ctx context.Context, printer *model.Printer) error
	GetByID(ctx context.Context, id int64) (*model.Printer, error)
	GetBySerial(ctx context.Context, serial string) (*model.Printer, error)
	List(ctx context.Context) ([]model.Printer, error)
	Update(ctx context.Context, printer *model.Printer) error
	UpdateLastReport(ctx context.Context, id int64, report []byte) error
	Delete(ctx context.Context, id int64) error
	ExistsBySerial(ctx context.Context, serial string) (bool, error)
}

// ==================== 实现 ====================

type printerRepository struct {
	db *gorm.DB
}

// NewPrinterRepository 创建打印机仓库
func NewPrinterRepository(db *gorm.DB) PrinterRepository {
	return &printerRepository{db: db}
}

// Create 登记打印机
func (r *printerRepository) Create(ctx context.Context, printer *model.Printer) error {
	return r.db.WithContext(ctx).Create(printer).Error
}

// GetByID 根据 ID 获取打印机，未找到时返回 (nil, nil)
func (r *printerRepository) GetByID(ctx context.Context, id int64) (*model.Printer, error) {
	var printer model.Printer
	err := r.db.WithContext(ctx).First(&printer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &printer, nil
}

// GetBySerial 根据序列号获取打印机
func (r *printerRepository) GetBySerial(ctx context.Context, serial string) (*model.Printer, error) {
	var printer model.Printer
	err := r.db.WithContext(ctx).Where("serial = ?", serial).First(&printer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &printer, nil
}

// List 全量列表（农场规模有限，不做分页）
func (r *printerRepository) List(ctx context.Context) ([]model.Printer, error) {
	var printers []model.Printer
	err := r.db.WithContext(ctx).Order("id").Find(&printers).Error
	return printers, err
}

// Update 更新打印机
func (r *printerRepository) Update(ctx context.Context, printer *model.Printer) error {
	return r.db.WithContext(ctx).Save(printer).Error
}

// UpdateLastReport 记录最近一次遥测上报
func (r *printerRepository) UpdateLastReport(ctx context.Context, id int64, report []byte) error {
	return r.db.WithContext(ctx).Model(&model.Printer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_report":  datatypes.JSON(report),
			"last_seen_at": time.Now(),
		}).Error
}

// Delete 删除打印机（软删除）
func (r *printerRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Printer{}, id).Error
}

// ExistsBySerial 序列号是否已登记
func (r *printerRepository) ExistsBySerial(ctx context.Context, serial string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Printer{}).
		Where("serial = ?", serial).
		Count(&count).Error
	return count > 0, err
}
