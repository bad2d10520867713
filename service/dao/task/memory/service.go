package memory

import (
	"github.com/viant/relay/model/task"
	"github.com/viant/relay/service/dao"
	"github.com/viant/relay/service/dao/store"
)

// New creates a new in-memory task storage service.
func New() dao.Service[string, task.Task] {
	return store.NewMemoryStore[string, task.Task](func(t *task.Task) string { return t.ID })
}
