package services

import (
	"context"

	"go.uber.org/zap"

	"isp-order-system/internal/orderkind"
)

// NotifierInterface — внешний коллаборатор доставки уведомлений.
// Ядро лишь вызывает Notify после коммита; механика доставки
// (push, групповая рассылка) живёт снаружи.
type NotifierInterface interface {
	Notify(ctx context.Context, recipientID uint64, kind orderkind.Kind, appNumber string, newLoad int64) error
}

// LogNotifier — дефолтная реализация: пишет уведомление в лог.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) NotifierInterface {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, recipientID uint64, kind orderkind.Kind, appNumber string, newLoad int64) error {
	n.logger.Info("Уведомление получателю",
		zap.Uint64("recipientID", recipientID),
		zap.String("kind", string(kind)),
		zap.String("appNumber", appNumber),
		zap.Int64("newLoad", newLoad),
	)
	return nil
}
