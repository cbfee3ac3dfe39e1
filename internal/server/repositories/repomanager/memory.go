package repomanager

import (
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/albums"
	"github.com/dmitrijs2005/gophalbum/internal/server/repositories/files"
)

// MemoryRepositoryManager holds everything in process memory. Data is
// lost on exit.
type MemoryRepositoryManager struct {
	files  *files.MemoryRepository
	albums *albums.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		files:  files.NewMemoryRepository(),
		albums: albums.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Files() files.Repository   { return m.files }
func (m *MemoryRepositoryManager) Albums() albums.Repository { return m.albums }
func (m *MemoryRepositoryManager) Close() error              { return nil }
