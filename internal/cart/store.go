package cart

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/lvraikkonen/azure-calculator/internal/domain"
	"github.com/lvraikkonen/azure-calculator/internal/domain/entity"
)

// Store 把清单持久化为 JSON 文件, 与网页端的 localStorage 行为对齐:
// 每次变更全量覆盖, 读取失败回退到空清单。
type Store struct {
	path string
}

// NewStore 创建指向 path 的持久化存储。
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load 从磁盘恢复清单。文件不存在时返回空清单, 内容损坏视为空清单并报错。
func (s *Store) Load() (*Cart, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return New(), domain.NewInternalError(fmt.Errorf("读取清单文件: %w", err))
	}

	var items []entity.SelectedProduct
	if err := sonic.Unmarshal(data, &items); err != nil {
		return New(), domain.NewInternalError(fmt.Errorf("解析清单文件: %w", err))
	}
	return &Cart{items: items}, nil
}

// Save 全量写出清单。
func (s *Store) Save(c *Cart) error {
	data, err := sonic.MarshalIndent(c.items, "", "  ")
	if err != nil {
		return domain.NewInternalError(fmt.Errorf("序列化清单: %w", err))
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return domain.NewInternalError(fmt.Errorf("创建清单目录: %w", err))
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return domain.NewInternalError(fmt.Errorf("写入清单文件: %w", err))
	}
	return nil
}
