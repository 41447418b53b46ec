// SPDX-License-Identifier: GPL-3.0-only

package handlers

import (
	"craftcv-server/db"
	"craftcv-server/models"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// GetSyncEventsHandler godoc
// @Summary      List identity sync events
// @Description  Returns the audit trail of registry synchronization outcomes, newest first. Filterable by status and category.
// @Tags         sync-events
// @Produce      json
// @Param        page       query  int     false  "Page number"      default(1)
// @Param        page_size  query  int     false  "Page size"        default(20)
// @Param        status     query  string  false  "Filter by status (SYNCED, PARTIAL, FAILED)"
// @Param        category   query  string  false  "Filter by category (REGISTER, PROFILE_UPDATE, PASSWORD_SYNC)"
// @Success      200 {object} SyncEventListResponse  "Sync events retrieved successfully"
// @Failure      401 {object} echo.HTTPError     "Unauthorized"
// @Failure      500 {object} echo.HTTPError     "Internal server error"
// @Router       /v1/sync-events [get]
func GetSyncEventsHandler(c echo.Context) error {
	logger := c.Logger()

	page := 1
	pageSize := 20

	if p := c.QueryParam("page"); p != "" {
		if _, err := fmt.Sscanf(p, "%d", &page); err != nil || page < 1 {
			page = 1
		}
	}
	if ps := c.QueryParam("page_size"); ps != "" {
		if _, err := fmt.Sscanf(ps, "%d", &pageSize); err != nil || pageSize < 1 {
			pageSize = 20
		}
		if pageSize > 100 {
			pageSize = 100
		}
	}

	query := db.Conn.Model(&models.SyncEvent{})
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Errorf("Failed to count sync events: %v", err)
		return echo.ErrInternalServerError
	}

	events := []models.SyncEvent{}
	if err := query.Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&events).Error; err != nil {
		logger.Errorf("Failed to fetch sync events: %v", err)
		return echo.ErrInternalServerError
	}

	details := make([]SyncEventDetails, 0, len(events))
	for _, event := range events {
		details = append(details, SyncEventDetails{
			EID:          event.EID.String(),
			Category:     (*string)(event.Category),
			Status:       (*string)(event.Status),
			GlobalUserID: event.GlobalUserID,
			Email:        event.Email,
			Description:  event.Description,
			CreatedAt:    event.CreatedAt.Format(time.RFC3339),
		})
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return c.JSON(http.StatusOK, SyncEventListResponse{
		Data: details,
		Pagination: PaginationDetails{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
		Message: "Sync events retrieved successfully",
	})
}
