package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/library-circulation/internal/adapters/http/dto"
)

// int64Param parses a positive numeric path parameter. On failure it writes
// a 400 response and returns false.
func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		dto.RespondWithCode(c, dto.ErrorCodeBadRequest, name+" must be a positive integer")
		return 0, false
	}

	return id, true
}
