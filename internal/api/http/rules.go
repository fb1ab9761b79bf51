package http

import (
	"fmt"
	"net/http"

	"github.com/GriffinCanCode/ReaderOS/backend/internal/engine"
	"github.com/GriffinCanCode/ReaderOS/backend/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

type ruleTestRequest struct {
	Content string `json:"content"`
	engine.Probe
}

// TestRule evaluates a rule, or a list rule with field rules, against
// supplied content. It never fetches.
func (h *Handlers) TestRule(c *gin.Context) {
	var req ruleTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Rule == "" && req.List == "" {
		badRequest(c, "rule or list is required")
		return
	}
	if err := validateProbe(req); err != nil {
		badRequest(c, err.Error())
		return
	}

	done := h.tracked.Track("engine", "probe")
	result := engine.NewDocument(req.Content).Run(req.Probe)
	done(nil)
	c.JSON(http.StatusOK, result)
}

func validateProbe(req ruleTestRequest) error {
	if len(req.Content) > utils.MaxContentSize {
		return fmt.Errorf("content must not exceed %d bytes", utils.MaxContentSize)
	}
	if err := utils.ValidateRule(req.Rule, "rule"); err != nil {
		return err
	}
	if err := utils.ValidateRule(req.List, "list"); err != nil {
		return err
	}
	for name, rule := range req.Fields {
		if err := utils.ValidateRule(rule, "fields."+name); err != nil {
			return err
		}
	}
	return nil
}
