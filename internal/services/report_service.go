package services

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"isp-order-system/internal/entities"
	"isp-order-system/internal/orderkind"
	"isp-order-system/internal/repositories"
)

// ReportServiceInterface — отчётный срез поверх хранилища заявок и
// журнала передач. Только чтение, в ядро не пишет.
type ReportServiceInterface interface {
	BuildOrdersReport(ctx context.Context) (*excelize.File, error)
}

type ReportService struct {
	orderRepo   repositories.OrderRepositoryInterface
	handoffRepo repositories.HandoffRepositoryInterface
	logger      *zap.Logger
}

func NewReportService(
	orderRepo repositories.OrderRepositoryInterface,
	handoffRepo repositories.HandoffRepositoryInterface,
	logger *zap.Logger,
) ReportServiceInterface {
	return &ReportService{orderRepo: orderRepo, handoffRepo: handoffRepo, logger: logger}
}

const reportPageSize = 500

// BuildOrdersReport собирает книгу с листом на каждый вид заявок:
// строка = заявка + последняя передача по ней.
func (s *ReportService) BuildOrdersReport(ctx context.Context) (*excelize.File, error) {
	f := excelize.NewFile()

	for i, kind := range orderkind.All() {
		sheet := string(kind)
		if i == 0 {
			f.SetSheetName(f.GetSheetName(0), sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("ошибка создания листа %s: %w", sheet, err)
			}
		}

		headers := []string{"Номер", "Клиент", "Адрес", "Регион", "Статус", "Активна", "Держатель", "Статус при передаче", "Создана"}
		for col, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return nil, err
			}
		}

		rowNum := 2
		for offset := uint64(0); ; offset += reportPageSize {
			orders, total, err := s.orderRepo.List(ctx, kind, reportPageSize, offset)
			if err != nil {
				return nil, err
			}
			for j := range orders {
				if err := s.writeOrderRow(ctx, f, sheet, rowNum, &orders[j]); err != nil {
					return nil, err
				}
				rowNum++
			}
			if offset+reportPageSize >= total {
				break
			}
		}
	}

	s.logger.Info("Отчёт по заявкам сформирован")
	return f, nil
}

func (s *ReportService) writeOrderRow(ctx context.Context, f *excelize.File, sheet string, rowNum int, order *entities.Order) error {
	holder, handoffStatus := "", ""
	latest, err := s.handoffRepo.LatestFor(ctx, entities.OrderRef{Kind: order.Kind, ID: order.ID})
	if err != nil {
		return err
	}
	if latest != nil {
		holder = fmt.Sprintf("%d", latest.RecipientID)
		handoffStatus = latest.RecipientStatus
	}

	values := []interface{}{
		order.AppNumber, order.ClientID, order.Address, order.Region,
		order.Status, order.IsActive, holder, handoffStatus,
		order.CreatedAt.Local().Format(timeLayout),
	}
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
