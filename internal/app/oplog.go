package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/internal/events"
	"github.com/merchkit/storeadmin/pkg/common"
)

// initOprLog subscribes the operation log writer to entity mutations.
// Every admin create/update/delete lands here as one sys_opr_log row.
func (a *Application) initOprLog() {
	err := a.eventBus.SubscribeMutation(func(m events.EntityMutation) {
		desc := fmt.Sprintf("%s: %s %q", m.Resource, m.Action, m.Name)
		if m.Name == "" {
			desc = fmt.Sprintf("%s: %s #%d", m.Resource, m.Action, m.EntityID)
		}
		entry := domain.SysOprLog{
			ID:        common.UUIDint64(),
			StoreID:   m.StoreID,
			OprIP:     m.OprIP,
			OptAction: string(m.Action),
			OptDesc:   common.TruncateString(desc, 240),
			OptTime:   time.Now(),
		}
		if err := a.gormDB.Create(&entry).Error; err != nil {
			zap.L().Error("failed to write operation log", zap.Error(err))
		}
	})
	if err != nil {
		zap.S().Errorf("oplog subscribe error %s", err.Error())
	}
}
