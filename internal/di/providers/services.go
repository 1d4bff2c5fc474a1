package providers

import (
	"github.com/samber/do/v2"

	"github.com/promptdeck/promptdeck-server/internal/backup"
	"github.com/promptdeck/promptdeck-server/internal/lifecycle"
	"github.com/promptdeck/promptdeck-server/internal/logger"
	"github.com/promptdeck/promptdeck-server/internal/service"
)

// ProvidePromptService provides the prompt version service.
func ProvidePromptService(i do.Injector) (*service.PromptService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	// Wire to store for automatic indexing on writes
	storeHandle.SetSearchIndexer(indexHandle.SearchIndex)

	return service.NewPromptService(storeHandle.Store, sseHandle.Manager, indexHandle.SearchIndex, log), nil
}

// ProvideTagService provides the tag hierarchy service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, sseHandle.Manager, log), nil
}

// ProvideDeleter provides the version deletion pipeline.
func ProvideDeleter(i do.Injector) (*lifecycle.Deleter, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	auditHandle := do.MustInvoke[*AuditRecorderHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return lifecycle.NewDeleter(storeHandle.Store, auditHandle.Recorder, log), nil
}

// ProvideBackupService provides the export and import service.
func ProvideBackupService(i do.Injector) (*backup.Service, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return backup.NewService(storeHandle.Store, appVersion, log.Logger), nil
}
