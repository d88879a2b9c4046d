package jobs

import (
	"context"

	"toolcrib-backend/internal/logger"
)

// SendOverdueReminders e-mails every worker holding an approved item past its
// due date.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()
		now := jr.clock.Now()

		items, err := jr.store.Requests.ListOverdue(ctx, now)
		if err != nil {
			logger.Error("Failed to query overdue items", "error", err)
			return
		}

		count := 0
		for _, item := range items {
			due := item.RequestReturnDate
			if item.ReturnDate != nil {
				due = *item.ReturnDate
			}

			err := jr.email.SendOverdueReminder(ctx, item.WorkerEmail, item.WorkerName, item.ToolName, item.ReqQuantity, due)
			if err != nil {
				logger.Error("Failed to send overdue reminder email",
					"item_id", item.ID,
					"worker_id", item.WorkerID,
					"error", err)
				continue
			}

			count++
			logger.Debug("Sent overdue reminder",
				"item_id", item.ID,
				"worker_id", item.WorkerID,
				"due_date", due)
		}

		logger.Info("Overdue reminders sent", "count", count, "overdue", len(items))
	})
}

// SendLowStockAlerts e-mails the managers of every crib that holds a tool
// below its minimum threshold.
func (jr *JobRunner) SendLowStockAlerts() {
	jr.runWithRecovery("SendLowStockAlerts", func() {
		ctx := context.Background()

		rows, err := jr.store.Inventory.ListBelowThreshold(ctx)
		if err != nil {
			logger.Error("Failed to query low stock inventory", "error", err)
			return
		}

		count := 0
		for _, row := range rows {
			crib, err := jr.store.Premises.GetToolCrib(ctx, row.ToolCribID)
			if err != nil {
				logger.Error("Failed to load tool crib", "tool_crib_id", row.ToolCribID, "error", err)
				continue
			}
			managers, err := jr.store.Premises.ListToolCribManagers(ctx, row.ToolCribID)
			if err != nil {
				logger.Error("Failed to load tool crib managers", "tool_crib_id", row.ToolCribID, "error", err)
				continue
			}
			if len(managers) == 0 {
				logger.Warn("Low stock in tool crib without managers",
					"tool_crib_id", row.ToolCribID,
					"tool_id", row.ToolID)
				continue
			}

			for _, m := range managers {
				err := jr.email.SendLowStockAlert(ctx, m.Email, m.Name, row.Tool.Name, crib.Name,
					row.AvailableQuantity, row.MinimumThreshold)
				if err != nil {
					logger.Error("Failed to send low stock alert",
						"tool_crib_id", row.ToolCribID,
						"tool_id", row.ToolID,
						"manager_id", m.ID,
						"error", err)
					continue
				}
				count++
			}
		}

		logger.Info("Low stock alerts sent", "count", count, "rows", len(rows))
	})
}
