package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const pinHeader = "X-Exam-PIN"

// ParseUintParam reads a positive id path parameter. On failure it answers
// 400 and returns 0.
func ParseUintParam(c *gin.Context, param string) uint {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
		})
		return 0
	}
	return uint(id)
}

// ParseIntParam reads a non-negative integer path parameter.
func ParseIntParam(c *gin.Context, param string) (int, bool) {
	value, err := strconv.Atoi(c.Param(param))
	if err != nil || value < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
		})
		return 0, false
	}
	return value, true
}

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

func parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseBoolQuery(c *gin.Context, param string) bool {
	switch strings.ToLower(c.Query(param)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

type pinRequest struct {
	PIN string `json:"pin"`
}

// readPIN takes the PIN from the X-Exam-PIN header, the pin query parameter
// or a {"pin": ...} body, in that order.
func readPIN(c *gin.Context) string {
	if pin := c.GetHeader(pinHeader); pin != "" {
		return pin
	}
	if pin := c.Query("pin"); pin != "" {
		return pin
	}
	if c.Request.ContentLength == 0 {
		return ""
	}
	var req pinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return ""
	}
	return req.PIN
}
