// Package export формирует выгрузки списка заказов.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mmeshcher/restaurant-orders/internal/model"
)

// UnassignedWaiter выводится в колонке Waiter для заказов без официанта.
const UnassignedWaiter = "Unassigned"

var csvHeader = []string{"Order ID", "Table", "Customer", "Waiter", "Items", "Status", "Time", "Amount"}

// WriteOrdersCSV записывает заказы в CSV: строка заголовка и по строке на заказ,
// разделитель строк "\n" без завершающего перевода строки. Поля не экранируются,
// формат совпадает с выгрузкой панели управления. Время заказа выводится в зоне loc;
// nil означает time.Local.
func WriteOrdersCSV(w io.Writer, orders []model.Order, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	lines := make([]string, 0, len(orders)+1)
	lines = append(lines, strings.Join(csvHeader, ","))

	for i := range orders {
		lines = append(lines, strings.Join(csvRow(&orders[i], loc), ","))
	}

	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func csvRow(o *model.Order, loc *time.Location) []string {
	waiter := o.AssignedWaiter
	if waiter == "" {
		waiter = UnassignedWaiter
	}

	return []string{
		o.ID,
		o.TableLabel(),
		o.CustomerName,
		waiter,
		strconv.Itoa(len(o.Items)),
		string(o.Status),
		o.CreatedAt.In(loc).Format("3:04 PM"),
		FormatAmount(o.TotalCents()),
	}
}

// FormatAmount форматирует сумму в центах как "$12.34".
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
