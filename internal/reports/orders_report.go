// Package reports строит Excel-отчеты для администраторов.
package reports

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"artflora/internal/constants"
	"artflora/internal/models"
	"artflora/internal/utils"
)

const OrdersSheet = "Заказы"

var orderHeaders = []string{
	"ID Заказа", "Дата", "Время заказа", "Клиент", "Никнейм", "Телефон", "Состав", "Получение", "Адрес",
	"Статус", "Сумма", "Доставка", "Скидка", "Итого", "Прибыль", "Комментарий",
}

// OrdersWorkbook строит книгу с листом "Заказы" и итоговой строкой.
func OrdersWorkbook(orders []models.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("OrdersWorkbook: ошибка закрытия книги: %v", err)
		}
	}()

	index, err := f.NewSheet(OrdersSheet)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания листа: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("ошибка удаления стандартного листа: %w", err)
	}
	f.SetActiveSheet(index)

	for i, header := range orderHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(OrdersSheet, cell, header); err != nil {
			return nil, err
		}
	}

	var total, profit int64
	rowIndex := 2
	for _, o := range orders {
		values := []interface{}{
			o.ID,
			o.CreatedAt.Format("02.01.2006"),
			o.OrderTime,
			o.UserName,
			o.UserUsername,
			utils.FormatPhoneNumber(o.Phone),
			itemsSummary(o.Items),
			deliveryLabel(o.DeliveryOption),
			o.DeliveryAddress.String,
			utils.GetStatusDisplayName(o.StatusID),
			o.TotalAmount,
			o.DeliveryFee,
			o.DiscountAmount,
			o.FinalAmount,
			o.Profit,
			o.Comment.String,
		}
		if err := f.SetSheetRow(OrdersSheet, fmt.Sprintf("A%d", rowIndex), &values); err != nil {
			return nil, fmt.Errorf("ошибка записи заказа #%d: %w", o.ID, err)
		}
		total += o.FinalAmount
		profit += o.Profit
		rowIndex++
	}

	// итоговая строка под таблицей
	totalRow := rowIndex + 1
	_ = f.SetCellValue(OrdersSheet, fmt.Sprintf("A%d", totalRow), "Итого")
	_ = f.SetCellValue(OrdersSheet, fmt.Sprintf("N%d", totalRow), total)
	_ = f.SetCellValue(OrdersSheet, fmt.Sprintf("O%d", totalRow), profit)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения Excel файла: %w", err)
	}
	return buf.Bytes(), nil
}

// ReportFileName - уникальное имя файла отчета.
func ReportFileName(now time.Time) string {
	return fmt.Sprintf("orders_report_%s_%s.xlsx", now.Format("20060102_150405"), uuid.NewString()[:8])
}

func itemsSummary(items models.OrderItems) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
	}
	return strings.Join(parts, ", ")
}

func deliveryLabel(option string) string {
	if option == constants.DELIVERY_PICKUP {
		return "Самовывоз"
	}
	return "Доставка"
}
