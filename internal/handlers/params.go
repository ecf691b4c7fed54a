package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/collabsphere-dev/collabsphere/internal/httpx"
)

// paramID parses a numeric path parameter, writing a validation error on
// failure.
func paramID(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil || id == 0 {
		httpx.Respond(ctx, httpx.Validation("Invalid "+name))
		return 0, false
	}

	return uint(id), true
}
