package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"bambufarm_v1_202608/internal/config"
	"bambufarm_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// GcodeStorage G-code 文件库存储接口
// Key 是存储层内部标识，上传时生成，列表里原样返回
type GcodeStorage interface {
	// Upload 上传切片文件，返回存储 Key
	Upload(ctx context.Context, data []byte, filename string) (key string, err error)

	// List 列出文件库中所有文件
	List(ctx context.Context) ([]model.GcodeFile, error)

	// Delete 删除文件
	Delete(ctx context.Context, key string) error

	// GetSignedURL 获取短时有效的下载地址（本地存储返回直接路径）
	GetSignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// ==================== 工厂方法 ====================

// NewGcodeStorage 按配置创建存储实现
func NewGcodeStorage(cfg *config.StorageConfig) (GcodeStorage, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3GcodeStorage(cfg)
	case "local":
		return NewLocalGcodeStorage(cfg)
	default:
		return nil, fmt.Errorf("不支持的存储提供者: %s", cfg.Provider)
	}
}

// ==================== S3 实现 ====================

// S3GcodeStorage S3（或兼容端点，如 MinIO）上的文件库
type S3GcodeStorage struct {
	client   *s3.Client
	bucket   string
	basePath string
}

// NewS3GcodeStorage 创建 S3 文件库
func NewS3GcodeStorage(cfg *config.StorageConfig) (*S3GcodeStorage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3GcodeStorage{
		client:   client,
		bucket:   cfg.Bucket,
		basePath: strings.Trim(cfg.BasePath, "/"),
	}, nil
}

func (s *S3GcodeStorage) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	key := s.generateKey(filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
		Metadata:    map[string]string{"filename": filename},
	})
	if err != nil {
		return "", fmt.Errorf("上传S3失败: %v", err)
	}
	return key, nil
}

func (s *S3GcodeStorage) List(ctx context.Context) ([]model.GcodeFile, error) {
	var files []model.GcodeFile

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}
	if s.basePath != "" {
		input.Prefix = aws.String(s.basePath + "/")
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("列出S3对象失败: %v", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			files = append(files, model.GcodeFile{
				Key:       key,
				Filename:  filenameFromKey(key),
				Size:      aws.ToInt64(obj.Size),
				UpdatedAt: aws.ToTime(obj.LastModified),
			})
		}
	}
	return files, nil
}

func (s *S3GcodeStorage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3GcodeStorage) GetSignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.client)
	presignedURL, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return presignedURL.URL, nil
}

// generateKey 原始文件名 + 短随机段，既防重名又保留可读性
func (s *S3GcodeStorage) generateKey(filename string) string {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filepath.Base(filename), ext)
	name := fmt.Sprintf("%s_%s%s", stem, uuid.New().String()[:8], ext)
	if s.basePath != "" {
		return fmt.Sprintf("%s/%s", s.basePath, name)
	}
	return name
}

// ==================== 本地存储 (开发测试用) ====================

// LocalGcodeStorage 本地目录上的文件库
type LocalGcodeStorage struct {
	basePath string
}

// NewLocalGcodeStorage 创建本地文件库
func NewLocalGcodeStorage(cfg *config.StorageConfig) (*LocalGcodeStorage, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "./gcode"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("创建本地存储目录失败: %v", err)
	}
	return &LocalGcodeStorage{basePath: basePath}, nil
}

func (s *LocalGcodeStorage) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filepath.Base(filename), ext)
	key := fmt.Sprintf("%s_%s%s", stem, uuid.New().String()[:8], ext)

	if err := os.WriteFile(filepath.Join(s.basePath, key), data, 0o644); err != nil {
		return "", fmt.Errorf("写入本地文件失败: %v", err)
	}
	return key, nil
}

func (s *LocalGcodeStorage) List(ctx context.Context) ([]model.GcodeFile, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("读取本地存储目录失败: %v", err)
	}

	var files []model.GcodeFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, model.GcodeFile{
			Key:       entry.Name(),
			Filename:  filenameFromKey(entry.Name()),
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
	}
	return files, nil
}

func (s *LocalGcodeStorage) Delete(ctx context.Context, key string) error {
	// 防目录穿越
	if key != filepath.Base(key) {
		return fmt.Errorf("非法的文件标识: %s", key)
	}
	return os.Remove(filepath.Join(s.basePath, key))
}

func (s *LocalGcodeStorage) GetSignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	// 本地存储无需签名
	return filepath.Join(s.basePath, key), nil
}

// ==================== 工具函数 ====================

// filenameFromKey 从存储 Key 还原展示用文件名（剥掉路径前缀和随机段）
func filenameFromKey(key string) string {
	base := filepath.Base(key)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if idx := strings.LastIndex(stem, "_"); idx > 0 && len(stem)-idx-1 == 8 {
		stem = stem[:idx]
	}
	return stem + ext
}
